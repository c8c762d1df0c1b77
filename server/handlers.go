package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/site"
)

const maxPreviewBytes = 1 << 20

type pageResponse struct {
	URL      string     `json:"url"`
	Title    string     `json:"title"`
	Content  string     `json:"content,omitempty"`
	Template string     `json:"template,omitempty"`
	Sites    []int      `json:"sites"`
	Updated  *time.Time `json:"updated,omitempty"`
}

func newPageResponse(p flatpage.Page, withContent bool) pageResponse {
	resp := pageResponse{URL: p.URL, Title: p.Title, Template: p.Template, Sites: p.Sites}
	if withContent {
		resp.Content = p.Content
	}
	if !p.Updated.IsZero() {
		updated := p.Updated.UTC()
		resp.Updated = &updated
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pages, err := s.svc.ListPages(r.Context())
	if err != nil {
		s.logger.Error("list pages", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]pageResponse, 0, len(pages))
	for _, p := range pages {
		items = append(items, newPageResponse(p, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handlePageJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	p, err := s.svc.Page(r.Context(), url)
	if err != nil {
		switch {
		case errors.Is(err, site.ErrPageNotFound):
			writeError(w, http.StatusNotFound, "page not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(p, true))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	rendered, err := s.svc.RenderPreview([]byte(payload.Content))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": string(rendered.HTML), "headings": rendered.Headings})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requested := sanitizeRequestPath(r.URL.Path)
	target, redirect, err := s.svc.CanonicalURL(r.Context(), r.URL.Path)
	if err != nil {
		s.logger.Error("canonical url", "path", requested, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if redirect {
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	html, err := s.svc.RenderFullPage(r.Context(), requested)
	if err != nil {
		switch {
		case errors.Is(err, site.ErrPageNotFound):
			s.writeNotFound(w, r, requested)
		default:
			s.logger.Error("render page", "path", requested, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeHTML(w, http.StatusOK, html)
}

func (s *Server) writeNotFound(w http.ResponseWriter, r *http.Request, requested string) {
	notFound, err := s.svc.RenderNotFoundPage(r.Context(), requested)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, http.StatusNotFound, notFound)
}
