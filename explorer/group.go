package explorer

import (
	"path"
	"sort"

	"github.com/noh-rs/nohrs/search"
)

// Match is one matching line within a file.
type Match struct {
	LineNumber  int    `json:"line_number"`
	LineContent string `json:"line_content"`
}

// FileResult groups the matches of one file.
type FileResult struct {
	Path     string  `json:"path"`
	Folder   string  `json:"folder"`
	Filename string  `json:"filename"`
	Matches  []Match `json:"matches"`
}

// Group folds raw search results into one FileResult per file, sorted by
// path. A filename-only result (line number zero) keeps its file in the
// output with an empty match list.
func Group(results []search.Result) []FileResult {
	byPath := make(map[string]*FileResult)

	for _, res := range results {
		fr, ok := byPath[res.Path]
		if !ok {
			fr = &FileResult{
				Path:     res.Path,
				Folder:   path.Dir(res.Path),
				Filename: path.Base(res.Path),
				Matches:  []Match{},
			}
			if fr.Folder == "." {
				fr.Folder = ""
			}
			byPath[res.Path] = fr
		}

		if res.LineNumber > 0 {
			fr.Matches = append(fr.Matches, Match{
				LineNumber:  res.LineNumber,
				LineContent: res.LineContent,
			})
		}
	}

	grouped := make([]FileResult, 0, len(byPath))
	for _, fr := range byPath {
		grouped = append(grouped, *fr)
	}
	sort.Slice(grouped, func(i, j int) bool {
		return grouped[i].Path < grouped[j].Path
	})
	return grouped
}
