package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/noh-rs/nohrs/config"
	"github.com/noh-rs/nohrs/explorer"
	"github.com/noh-rs/nohrs/git"
	"github.com/noh-rs/nohrs/search"
	"github.com/noh-rs/nohrs/server"
	"github.com/noh-rs/nohrs/transfer"
	"github.com/noh-rs/nohrs/vfs"
)

func cmdLs(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	limit := fs.Int("limit", 0, "page size (0 lists everything)")
	cursor := fs.String("cursor", "", "resume from a previous page")
	sortKey := fs.String("sort", "name", "sort key: name, size, modified, type")
	desc := fs.Bool("desc", false, "sort descending")
	withGit := fs.Bool("git", false, "annotate entries with git status (local paths only)")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := fs.Arg(0)
	if path == "" {
		path = cfg.Roots.Home
	}

	mounts, err := buildMounts(cfg, logger, nil)
	if err != nil {
		return err
	}
	exp := explorer.New(mounts, explorer.WithLogger(logger))

	result, err := exp.List(explorer.ListParams{Addr: path, Limit: *limit, Cursor: *cursor})
	if err != nil {
		return err
	}
	explorer.Sort(result.Entries, explorer.ParseSortKey(*sortKey), !*desc)

	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	annotate := func(string) string { return "" }
	if *withGit {
		annotate = gitAnnotator(path, logger)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, e := range result.Entries {
		modified := ""
		if e.Modified > 0 {
			modified = time.Unix(e.Modified, 0).Format("2006-01-02 15:04")
		}
		if *withGit {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", e.Kind, e.Size, modified, e.Name, annotate(e.Name))
		} else {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Kind, e.Size, modified, e.Name)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if result.NextCursor != "" {
		fmt.Printf("next: -cursor %s\n", result.NextCursor)
	}
	return nil
}

// gitAnnotator resolves per-entry git status for a local listing. Remote
// addresses and directories outside any repository annotate as blank.
func gitAnnotator(addr string, logger *slog.Logger) func(name string) string {
	blank := func(string) string { return "" }

	parsed, err := vfs.ParseAddr(addr)
	if err != nil || parsed.Scheme != "file" {
		return blank
	}
	repo, err := git.Detect(parsed.Path, git.WithLogger(logger))
	if err != nil {
		return blank
	}
	changes, err := repo.Status()
	if err != nil {
		logger.Warn("git status failed", "root", repo.Root(), "error", err)
		return blank
	}

	dir, err := filepath.Abs(parsed.Path)
	if err != nil {
		return blank
	}
	root := repo.Root()

	return func(name string) string {
		rel, err := filepath.Rel(root, filepath.Join(dir, name))
		if err != nil {
			return ""
		}
		rel = filepath.ToSlash(rel)
		if st, ok := changes[rel]; ok {
			return string(st)
		}
		// A change anywhere under a directory marks the directory itself.
		for p := range changes {
			if strings.HasPrefix(p, rel+"/") {
				return string(git.StatusModified)
			}
		}
		return ""
	}
}

func cmdStat(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.Arg(0) == "" {
		return fmt.Errorf("stat: path required")
	}

	mounts, err := buildMounts(cfg, logger, nil)
	if err != nil {
		return err
	}
	exp := explorer.New(mounts, explorer.WithLogger(logger))

	entry, err := exp.Stat(fs.Arg(0))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}

func cmdSearch(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	scope := fs.String("scope", "home", "search scope: home (indexed) or root (ripgrep)")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := fs.Arg(0)
	if query == "" {
		return fmt.Errorf("search: query required")
	}

	engine, err := search.NewEngine(search.EngineConfig{
		IndexPath:   cfg.Index.Path,
		ContentRoot: cfg.Roots.Home,
		MaxFileSize: cfg.Index.MaxFileSize,
		Debounce:    cfg.Watch.Debounce,
		// One-shot query; live updates are the server's concern.
		DisableWatcher: true,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(ctx, query, search.ParseScope(*scope))
	if err != nil {
		return err
	}
	grouped := explorer.Group(results)

	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(grouped)
	}
	for _, file := range grouped {
		fmt.Println(file.Path)
		for _, m := range file.Matches {
			fmt.Printf("  %d: %s\n", m.LineNumber, m.LineContent)
		}
	}
	return nil
}

func cmdIndex(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "suppress progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root := fs.Arg(0)
	if root == "" {
		root = cfg.Roots.Home
	}

	index, err := search.OpenIndex(cfg.Index.Path, root,
		search.WithIndexLogger(logger), search.WithMaxFileSize(cfg.Index.MaxFileSize))
	if err != nil {
		return err
	}
	defer index.Close()

	var progress func(float64)
	if !*quiet {
		progress = func(p float64) {
			fmt.Fprintf(os.Stderr, "\rindexing %3.0f%%", p*100)
		}
	}

	start := time.Now()
	if err := index.IndexTree(ctx, progress); err != nil {
		return err
	}
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}

	count, err := index.DocCount()
	if err != nil {
		return err
	}
	logger.Info("index built", "root", root, "documents", count, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdSync(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	policy := fs.String("policy", "skip", "conflict policy: skip, overwrite, newer")
	workers := fs.Int("workers", 0, "concurrent jobs (0 uses the default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("sync: source and destination required")
	}

	mounts, err := buildMounts(cfg, logger, nil)
	if err != nil {
		return err
	}

	opts := []transfer.QueueOption{transfer.WithQueueLogger(logger)}
	if *workers > 0 {
		opts = append(opts, transfer.WithWorkers(*workers))
	}
	queue := transfer.NewQueue(mounts, opts...)

	job, err := queue.Submit(transfer.Request{
		Src:    fs.Arg(0),
		Dst:    fs.Arg(1),
		Policy: transfer.ParsePolicy(*policy),
	})
	if err != nil {
		return err
	}
	queue.Wait()

	final, err := queue.Job(job.ID)
	if err != nil {
		return err
	}
	logger.Info("sync finished",
		"state", final.State,
		"copied", final.FilesCopied,
		"skipped", final.FilesSkipped,
		"bytes", final.BytesCopied)
	if final.State == transfer.StateFailed {
		return fmt.Errorf("sync: %s", final.Error)
	}
	return nil
}

func cmdServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mounts, err := buildMounts(cfg, logger, registry)
	if err != nil {
		return err
	}

	engine, err := search.NewEngine(search.EngineConfig{
		IndexPath:   cfg.Index.Path,
		ContentRoot: cfg.Roots.Home,
		MaxFileSize: cfg.Index.MaxFileSize,
		Debounce:    cfg.Watch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		MetricsAddr: cfg.Server.MetricsAddr,
		Explorer:    explorer.New(mounts, explorer.WithLogger(logger)),
		Engine:      engine,
		Queue:       transfer.NewQueue(mounts, transfer.WithQueueLogger(logger)),
		Logger:      logger,
		Registry:    registry,
	})
	return srv.ListenAndServe(ctx)
}
