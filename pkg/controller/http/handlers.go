package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/repository/firestore"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
	"github.com/halcyon-lab/minerva/pkg/usecase"
	"github.com/halcyon-lab/minerva/pkg/utils/errutil"
	"github.com/halcyon-lab/minerva/pkg/utils/safe"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

type chatRequest struct {
	Question        string `json:"question"`
	ConversationID  string `json:"conversation_id,omitempty"`
	MaxContextItems int    `json:"max_context_items,omitempty"`
}

type chatResponse struct {
	Answer         string         `json:"answer"`
	Sources        []model.Source `json:"sources"`
	ConversationID string         `json:"conversation_id"`
	Provider       string         `json:"provider"`
	FallbackUsed   bool           `json:"fallback_used"`
	Cached         bool           `json:"cached"`
}

// handleChat answers a question. Provider outages never surface here:
// the only non-200 outcomes are malformed requests.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid chat request body"), http.StatusBadRequest)
		return
	}

	result, err := s.uc.Chat(r.Context(), usecase.ChatInput{
		ConversationID: req.ConversationID,
		Question:       req.Question,
		MaxContext:     req.MaxContextItems,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, chatResponse{
		Answer:         result.Answer,
		Sources:        result.Sources,
		ConversationID: result.ConversationID.String(),
		Provider:       result.Provider.String(),
		FallbackUsed:   result.FallbackUsed,
		Cached:         result.Cached,
	})
}

type welcomeRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
}

type welcomeResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var req welcomeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid welcome request body"), http.StatusBadRequest)
			return
		}
	}

	result, err := s.uc.Welcome(r.Context(), req.ConversationID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, welcomeResponse{
		Message:        result.Message,
		ConversationID: result.ConversationID.String(),
	})
}

type messageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid limit"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := s.uc.History(r.Context(), conversationID, limit)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	resp := struct {
		Messages []messageResponse `json:"messages"`
	}{Messages: make([]messageResponse, len(messages))}
	for i, msg := range messages {
		resp.Messages[i] = messageResponse{
			ID:        msg.ID.String(),
			Role:      msg.Role.String(),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

type ingestRequest struct {
	Content  string            `json:"content"`
	Source   string            `json:"source,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ingestResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid ingest request body"), http.StatusBadRequest)
		return
	}

	record, err := s.uc.Ingest(r.Context(), usecase.IngestInput{
		Content:  req.Content,
		Source:   req.Source,
		Metadata: req.Metadata,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusCreated, ingestResponse{
		ID:        record.ID.String(),
		CreatedAt: record.CreatedAt.Format(time.RFC3339),
	})
}

type recordResponse struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	records, total, err := s.uc.ListRecords(r.Context(), limit, offset)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	resp := struct {
		Records []recordResponse `json:"records"`
		Total   int              `json:"total"`
	}{Records: make([]recordResponse, len(records)), Total: total}
	for i, rec := range records {
		resp.Records[i] = recordResponse{
			ID:        rec.ID.String(),
			Content:   rec.Content,
			Source:    rec.Source,
			Metadata:  rec.Metadata,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")

	if err := s.uc.DeleteRecord(r.Context(), types.RecordID(recordID)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound) {
			status = http.StatusNotFound
		}
		errutil.HandleHTTP(r.Context(), w, err, status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProviderHealth(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.uc.ProviderHealth(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Providers []*usecase.ProviderStatus `json:"providers"`
	}{Providers: statuses})
}
