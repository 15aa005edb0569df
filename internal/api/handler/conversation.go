package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/chat-workspace/internal/api/response"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/service"
)

// ConversationHandler handles conversation and message endpoints
type ConversationHandler struct {
	controller *service.ConversationController
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(controller *service.ConversationController) *ConversationHandler {
	return &ConversationHandler{controller: controller}
}

type renameRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type sendRequest struct {
	Message string `json:"message" validate:"max=20000"`
}

// List returns the conversation history, most recent first
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"conversations": h.controller.Conversations(),
	})
}

// Create starts a new conversation
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := h.controller.StartNew(r.Context())
	response.Created(w, domain.ConversationView{ID: id, Messages: []domain.Message{}})
}

// Active returns the active conversation
func (h *ConversationHandler) Active(w http.ResponseWriter, r *http.Request) {
	view, ok := h.controller.ActiveView()
	if !ok {
		response.NotFound(w, "no active conversation")
		return
	}
	response.OK(w, map[string]any{
		"conversation": view,
		"typing":       h.controller.TypingState(),
	})
}

// Open makes a conversation active. Unknown ids fall back to a new conversation.
func (h *ConversationHandler) Open(w http.ResponseWriter, r *http.Request) {
	view := h.controller.Open(r.Context(), chi.URLParam(r, "conversationID"))
	response.OK(w, view)
}

// Rename changes a conversation title
func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "conversationID")
	if !h.controller.Rename(r.Context(), id, req.Title) {
		response.BadRequest(w, "conversation not found or title unchanged")
		return
	}
	response.OK(w, map[string]string{"id": id, "title": req.Title})
}

// Delete removes a conversation
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.controller.Delete(r.Context(), chi.URLParam(r, "conversationID")) {
		writeServiceError(w, domain.ErrNotFound)
		return
	}
	response.NoContent(w)
}

// ClearAll removes the whole history
func (h *ConversationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	id := h.controller.ClearAll(r.Context())
	response.OK(w, map[string]string{"active_conversation_id": id})
}

// Send posts a message to the active conversation and waits for the reply
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decode(w, r, &req) {
		return
	}

	exchange, err := h.controller.Send(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, exchange)
}
