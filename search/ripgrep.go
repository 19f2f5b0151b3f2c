package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/noh-rs/nohrs/exec"
)

// Ripgrep answers queries by shelling out to rg. It serves the root scope,
// where maintaining an index would be impractical. A missing rg binary is
// not an error; searches just come back empty.
type Ripgrep struct {
	rg     exec.Executor
	root   string
	logger *slog.Logger
}

// RipgrepOption configures a Ripgrep backend.
type RipgrepOption func(*Ripgrep)

// WithRipgrepLogger sets the logger. The default discards everything.
func WithRipgrepLogger(logger *slog.Logger) RipgrepOption {
	return func(r *Ripgrep) {
		r.logger = logger
	}
}

// WithRipgrepExecutor overrides the executor, mainly for tests.
func WithRipgrepExecutor(executor exec.Executor) RipgrepOption {
	return func(r *Ripgrep) {
		r.rg = exec.NewWrapper(executor, "rg")
	}
}

// NewRipgrep creates a backend searching under root.
func NewRipgrep(root string, opts ...RipgrepOption) *Ripgrep {
	r := &Ripgrep{
		rg:     exec.NewWrapper(exec.New(exec.WithInheritEnv()), "rg"),
		root:   root,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// rgMessage is one line of rg --json output. Only match messages carry the
// fields below; other message types are ignored.
type rgMessage struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		Lines struct {
			Text string `json:"text"`
		} `json:"lines"`
		LineNumber int `json:"line_number"`
	} `json:"data"`
}

// Search runs rg --json and parses its match messages. Exit code 1 means
// no matches and returns an empty result; a missing binary degrades the
// same way with a warning.
func (r *Ripgrep) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	res, err := r.rg.Clone().WithContext(ctx).Run("--json", "--smart-case", "--", query, r.root)
	if err != nil {
		var execErr *exec.ExecError
		if errors.As(err, &execErr) && execErr.ExitCode == 1 {
			return nil, nil
		}
		r.logger.Warn("ripgrep unavailable", "root", r.root, "error", err)
		return nil, nil
	}

	var results []Result
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line == "" {
			continue
		}

		var msg rgMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			r.logger.Warn("parse ripgrep output", "error", err)
			continue
		}
		if msg.Type != "match" {
			continue
		}

		results = append(results, Result{
			Path:        msg.Data.Path.Text,
			LineNumber:  msg.Data.LineNumber,
			LineContent: strings.TrimRight(msg.Data.Lines.Text, "\r\n"),
		})
	}
	return results, nil
}

// Compile-time interface check.
var _ Backend = (*Ripgrep)(nil)
