package explorer

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/noh-rs/nohrs/errors"
)

// DefaultPreviewLimit caps how many bytes of a file a preview reads.
const DefaultPreviewLimit = 256 * 1024

// Preview content types.
const (
	PreviewText     = "text"
	PreviewMarkdown = "markdown"
	PreviewBinary   = "binary"
)

// PreviewResult is a bounded render of a file's head.
type PreviewResult struct {
	// Type is one of the Preview constants.
	Type string `json:"type"`

	// Content holds the file text, or rendered HTML for markdown.
	// Empty for binary files.
	Content string `json:"content"`

	// Truncated reports that the file was larger than the preview limit.
	Truncated bool `json:"truncated"`
}

// markdown renders GFM the same way for every preview; goldmark instances
// are stateless and safe for concurrent use.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Preview reads at most limit bytes of the addressed file and renders them.
// Markdown files are converted to HTML; files containing NUL bytes are
// reported as binary without content. A limit of zero uses the default.
func (e *Explorer) Preview(addrStr string, limit int64) (*PreviewResult, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	fsys, relPath, err := e.mounts.Resolve(addrStr)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve address")
	}

	f, err := fsys.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "open preview")
		}
		return nil, errors.Wrap(err, errors.CodeIO, "open preview")
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "read preview")
	}

	truncated := int64(len(head)) > limit
	if truncated {
		head = head[:limit]
		// The cut may have split a multibyte rune; drop the partial tail.
		for i := 0; i < utf8.UTFMax-1 && len(head) > 0; i++ {
			if r, size := utf8.DecodeLastRune(head); r == utf8.RuneError && size == 1 {
				head = head[:len(head)-1]
				continue
			}
			break
		}
	}

	if bytes.IndexByte(head, 0) >= 0 {
		return &PreviewResult{Type: PreviewBinary, Truncated: truncated}, nil
	}

	ext := strings.ToLower(path.Ext(relPath))
	if ext == ".md" || ext == ".markdown" {
		var buf bytes.Buffer
		if err := markdown.Convert(head, &buf); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "render markdown")
		}
		return &PreviewResult{Type: PreviewMarkdown, Content: buf.String(), Truncated: truncated}, nil
	}

	return &PreviewResult{Type: PreviewText, Content: string(head), Truncated: truncated}, nil
}
