package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/explorer"
	"github.com/noh-rs/nohrs/git"
	"github.com/noh-rs/nohrs/search"
	"github.com/noh-rs/nohrs/transfer"
	"github.com/noh-rs/nohrs/vfs"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.explorer.List(explorer.ListParams{
		Addr:   q.Get("path"),
		Limit:  limit,
		Cursor: q.Get("cursor"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStat(w http.ResponseWriter, r *http.Request) {
	entry, err := s.explorer.Stat(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.explorer.Preview(r.URL.Query().Get("path"), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, preview)
}

type repoResponse struct {
	Root    string                    `json:"root"`
	Branch  string                    `json:"branch"`
	Head    string                    `json:"head"`
	Changes map[string]git.FileStatus `json:"changes"`
}

// handleRepo annotates a local path with the enclosing repository's branch,
// HEAD, and changed files. Remote mounts have no repository.
func (s *Server) handleRepo(w http.ResponseWriter, r *http.Request) {
	addr, err := vfs.ParseAddr(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, errors.Wrap(err, errors.CodeInvalidInput, "parse path"))
		return
	}
	if addr.Scheme != "file" {
		s.writeError(w, errors.Newf(errors.CodeUnsupported, "repository status needs a local path, got %s://", addr.Scheme))
		return
	}

	repo, err := git.Detect(addr.Path, git.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, err)
		return
	}
	branch, err := repo.Branch()
	if err != nil {
		s.writeError(w, err)
		return
	}
	head, err := repo.Head()
	if err != nil {
		s.writeError(w, err)
		return
	}
	changes, err := repo.Status()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, repoResponse{
		Root:    repo.Root(),
		Branch:  branch,
		Head:    head,
		Changes: changes,
	})
}

type searchResponse struct {
	Query   string                `json:"query"`
	Scope   string                `json:"scope"`
	Results []explorer.FileResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	scope := search.ParseScope(q.Get("scope"))

	results, err := s.engine.Search(r.Context(), query, scope)
	if err != nil {
		s.writeError(w, err)
		return
	}

	grouped := explorer.Group(results)
	if grouped == nil {
		grouped = []explorer.FileResult{}
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Scope:   scope.String(),
		Results: grouped,
	})
}

type transferRequest struct {
	Src    string          `json:"src"`
	Dst    string          `json:"dst"`
	Policy transfer.Policy `json:"policy"`
}

func (s *Server) handleTransferCreate(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(err, errors.CodeInvalidInput, "decode transfer request"))
		return
	}
	if req.Src == "" || req.Dst == "" {
		s.writeError(w, errors.New(errors.CodeInvalidInput, "src and dst are required"))
		return
	}

	job, err := s.queue.Submit(transfer.Request{Src: req.Src, Dst: req.Dst, Policy: req.Policy})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleTransferStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.queue.Job(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", "error", err)
	s.writeJSON(w, statusFor(errors.GetCode(err)), errors.ToResponse(err))
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeAlreadyExists:
		return http.StatusConflict
	case errors.CodeInvalidInput, errors.CodeInvalidScope, errors.CodeInvalidConfig:
		return http.StatusBadRequest
	case errors.CodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeRemoteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
