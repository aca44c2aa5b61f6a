package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"gemini-chat/internal/middleware"
	"gemini-chat/internal/models"
	"gemini-chat/internal/render"
)

type chatService interface {
	Submit(ctx context.Context, sessionID uuid.UUID, input string) (*models.Session, string, error)
	Clear(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	History(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

type ChatHandler struct {
	chat chatService
	page *render.Page
}

func NewChatHandler(chat chatService, page *render.Page) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		page: page,
	}
}

// ──── Browser UI ────

func (h *ChatHandler) Index(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	sess, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		log.Printf("chat: failed to load session %s: %v", sessionID, err)
		http.Error(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, sess.Render(), sess.Pending); err != nil {
		log.Printf("chat: failed to render page: %v", err)
	}
}

// Submit handles the text field. Whatever happens the browser is sent back to
// the page, except when Gemini could not be reached at all.
func (h *ChatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if _, _, err := h.chat.Submit(r.Context(), sessionID, r.FormValue("message")); err != nil {
		log.Printf("chat: submission failed for session %s: %v", sessionID, err)
		http.Error(w, "Failed to reach Gemini", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ChatHandler) ClearForm(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	if _, err := h.chat.Clear(r.Context(), sessionID); err != nil {
		log.Printf("chat: clear failed for session %s: %v", sessionID, err)
		http.Error(w, "Failed to clear conversation", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ──── JSON API ────

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	sess, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("SESSION_ERROR", "Failed to load conversation", r))
		return
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{SessionID: sessionID, Messages: sess.Render()})
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	sess, reply, err := h.chat.Submit(r.Context(), sessionID, req.Message)
	if err != nil {
		log.Printf("chat: submission failed for session %s: %v", sessionID, err)
		writeJSON(w, http.StatusBadGateway, errorResp("AI_ERROR", "Failed to reach Gemini", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, Messages: sess.Render()})
}

func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	sess, err := h.chat.Clear(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("SESSION_ERROR", "Failed to clear conversation", r))
		return
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{SessionID: sessionID, Messages: sess.Render()})
}
