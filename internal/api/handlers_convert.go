package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docforge/internal/chunker"
	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/listedit"
	"github.com/dgallion1/docforge/internal/markdown"
	"github.com/dgallion1/docforge/internal/pdfmd"
	"github.com/dgallion1/docforge/internal/plaintext"
)

type markdownRequest struct {
	Markdown string `json:"markdown"`
	Engine   string `json:"engine"`
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if !s.decode(w, r, &req) {
		return
	}
	engine := s.opts.Engine
	if req.Engine != "" {
		e, err := markdown.ParseEngine(req.Engine)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		engine = e
	}

	start := time.Now()
	doc := engine.Parse(req.Markdown)
	s.metrics.ObserveConversion("markdown", start)

	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

type pdfRequest struct {
	Pages []string `json:"pages"`
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	res := pdfmd.New(s.opts.PDF).Reconstruct(req.Pages)
	doc := s.opts.Engine.Parse(res.Markdown)
	s.metrics.ObserveConversion("pdf", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"markdown":         res.Markdown,
		"document":         doc,
		"pages":            res.Pages,
		"running_lines":    nonNil(res.RunningLines),
		"pagination_lines": res.PaginationLines,
	})
}

type plaintextRequest struct {
	Document json.RawMessage `json:"document"`
}

func (s *Server) handlePlaintext(w http.ResponseWriter, r *http.Request) {
	var req plaintextRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Document) == 0 {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	text, err := plaintext.FromJSON(req.Document)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.ObserveConversion("plaintext", start)

	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

type editRequest struct {
	Document  doctree.Document  `json:"document"`
	Selection doctree.Selection `json:"selection"`
	Command   string            `json:"command"`
	Format    doctree.Kind      `json:"format"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}

	sel := req.Selection
	sess := &listedit.Session{Doc: &req.Document, Selection: &sel}

	start := time.Now()
	handled, err := sess.Apply(listedit.Command{Name: req.Command, Format: req.Format})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.ObserveConversion("edit", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"document":  sess.Doc,
		"selection": sess.Selection,
		"handled":   handled,
	})
}

type chunksRequest struct {
	Document  doctree.Document `json:"document"`
	Title     string           `json:"title"`
	ChunkSize int              `json:"chunk_size"`
	Overlap   int              `json:"overlap"`
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	var req chunksRequest
	if !s.decode(w, r, &req) {
		return
	}
	cfg := s.chunkConfig()
	if req.ChunkSize > 0 {
		cfg.ChunkSize = req.ChunkSize
	}
	if req.Overlap > 0 {
		cfg.ChunkOverlap = req.Overlap
	}

	start := time.Now()
	chunks := chunker.ChunkDocument(&req.Document, req.Title, cfg)
	s.metrics.ObserveConversion("chunks", start)

	if chunks == nil {
		chunks = []chunker.Chunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chunks": chunks})
}

type validateRequest struct {
	Document doctree.Document `json:"document"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.decode(w, r, &req) {
		return
	}
	problems := []string{}
	if err := doctree.Validate(&req.Document); err != nil {
		problems = strings.Split(err.Error(), "\n")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(problems) == 0,
		"errors": problems,
	})
}

func (s *Server) chunkConfig() chunker.Config {
	return chunker.Config{
		ChunkSize:    s.cfg.DefaultChunkSize,
		ChunkOverlap: s.cfg.DefaultChunkOverlap,
		MinChunk:     s.cfg.DefaultMinChunk,
	}
}

// decode reads a JSON request body bounded by the upload limit. On failure
// it writes the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
