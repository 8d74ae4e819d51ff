package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docqa/internal/catalog"
	"docqa/internal/podcast"
)

// defaultUser scopes requests that carry no X-User-ID header. Single
// operator deployments never need to set the header.
const defaultUser = "local"

func userID(r *http.Request) string {
	if u := r.Header.Get("X-User-ID"); u != "" {
		return u
	}
	return defaultUser
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, podcast.ErrQueueFull):
		status = http.StatusTooManyRequests
	case errors.Is(err, podcast.ErrInvalidTransition):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// --- collections ---

type createCollectionRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	col, err := s.catalog.CreateCollection(r.Context(), req.Name, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.catalog.ListCollections(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if cols == nil {
		cols = []catalog.Collection{}
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	col, err := s.catalog.GetCollection(r.Context(), chi.URLParam(r, "collectionID"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCollection(r.Context(), chi.URLParam(r, "collectionID"), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- documents ---

type ingestRequest struct {
	Filename     string `json:"filename"`
	Text         string `json:"text"`
	CollectionID string `json:"collection_id,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	OrderDate    string `json:"order_date,omitempty"`
	Act          string `json:"act,omitempty"`
	PageCount    int    `json:"page_count,omitempty"`
}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Filename == "" || req.Text == "" {
		badRequest(w, "filename and text are required")
		return
	}

	doc := &catalog.Document{
		Filename:     req.Filename,
		UserID:       userID(r),
		CollectionID: req.CollectionID,
		Attributes: catalog.Attributes{
			DocumentType: req.DocumentType,
			CaseNumber:   req.CaseNumber,
			OrderDate:    req.OrderDate,
			Act:          req.Act,
			PageCount:    req.PageCount,
		},
	}

	if err := s.ingestor.IngestText(r.Context(), doc, req.Text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.catalog.ListDocuments(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []catalog.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.catalog.GetDocument(r.Context(), chi.URLParam(r, "documentID"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestor.DeleteDocument(r.Context(), chi.URLParam(r, "documentID"), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	CollectionID string `json:"collection_id"`
}

func (s *Server) handleAssignCollection(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CollectionID == "" {
		badRequest(w, "collection_id is required")
		return
	}

	if err := s.catalog.AssignToCollection(r.Context(), chi.URLParam(r, "documentID"), req.CollectionID, userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- ask and search ---

type askRequest struct {
	Question     string `json:"question"`
	DocumentID   string `json:"document_id,omitempty"`
	CollectionID string `json:"collection_id,omitempty"`
	TopK         int    `json:"top_k,omitempty"` // search only
}

func (r askRequest) validate() string {
	if r.Question == "" {
		return "question is required"
	}
	if (r.DocumentID == "") == (r.CollectionID == "") {
		return "exactly one of document_id or collection_id is required"
	}
	return ""
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}

	if req.DocumentID != "" {
		ans, err := s.engine.AnswerDocument(r.Context(), req.Question, req.DocumentID, userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"answer": ans})
		return
	}

	result, err := s.engine.AnswerCollection(r.Context(), req.Question, req.CollectionID, userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		badRequest(w, msg)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	if req.DocumentID != "" {
		hits, err := s.engine.SearchDocument(r.Context(), req.Question, req.DocumentID, userID(r), req.TopK)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": hits})
		return
	}

	hits, err := s.engine.SearchCollection(r.Context(), req.Question, req.CollectionID, userID(r), req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

// --- podcasts ---

type podcastRequest struct {
	Speakers int `json:"speakers"`
}

func (s *Server) handleCreatePodcast(w http.ResponseWriter, r *http.Request) {
	if s.podcasts == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "podcast generation is disabled"})
		return
	}

	var req podcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Speakers == 0 {
		req.Speakers = 2
	}

	job, err := s.podcasts.Enqueue(r.Context(), chi.URLParam(r, "documentID"), userID(r), req.Speakers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetPodcast(w http.ResponseWriter, r *http.Request) {
	if s.podcasts == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "podcast generation is disabled"})
		return
	}

	job, err := s.podcasts.Jobs().Get(r.Context(), chi.URLParam(r, "jobID"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleLatestPodcast(w http.ResponseWriter, r *http.Request) {
	if s.podcasts == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "podcast generation is disabled"})
		return
	}

	job, err := s.podcasts.Jobs().Latest(r.Context(), chi.URLParam(r, "documentID"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if job == nil {
		writeError(w, catalog.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
