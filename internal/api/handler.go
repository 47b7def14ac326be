package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/chat"
	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// DefaultUserID is used when a request omits user_id.
const DefaultUserID = "default"

type Handler struct {
	orch   *chat.Orchestrator
	logger *zap.Logger
}

func NewHandler(orch *chat.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{orch: orch, logger: logger}
}

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ResetRequest struct {
	UserID string `json:"user_id"`
}

type ResetResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	response, err := h.orch.HandleTurn(r.Context(), userID, req.Message)
	if err != nil {
		h.writeTurnError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: response})
}

// writeTurnError resolves every turn failure to one of the defined
// outcomes; nothing reaches the client as an unhandled fault.
func (h *Handler) writeTurnError(w http.ResponseWriter, userID string, err error) {
	var genErr *chat.GenerationError
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "No input provided")
	case errors.Is(err, prompt.ErrUnsafeContent):
		writeError(w, http.StatusBadRequest, "Message contains reserved control sequences")
	case errors.As(err, &genErr):
		h.logger.Error("generation failed",
			zap.String("user_id", userID),
			zap.Error(genErr.Cause))
		writeError(w, http.StatusInternalServerError, genErr.Error())
	default:
		h.logger.Error("turn failed",
			zap.String("user_id", userID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ResetRequest
	if r.Body != nil {
		// Missing or empty body means the default user.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}

	if err := h.orch.Reset(r.Context(), userID); err != nil {
		h.logger.Error("reset failed",
			zap.String("user_id", userID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ResetResponse{Message: "Conversation reset for " + userID})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = DefaultUserID
	}

	messages, err := h.orch.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load history",
			zap.String("user_id", userID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WithLogging tags each request with an ID and logs it on completion.
func (h *Handler) WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		next(w, r)
		h.logger.Debug("request handled",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	}
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
