package handler

import (
	"net/http"
	"strconv"

	"chatsync/internal/domain/message"
	"chatsync/internal/engine"
	"chatsync/internal/repository"
	"chatsync/internal/services"
	"chatsync/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultHistoryLimit = 50

type MessageHandler struct {
	conversations *services.ConversationService
	messages      repository.MessageRepository
	engine        *engine.Engine
}

func NewMessageHandler(conversations *services.ConversationService, messages repository.MessageRepository, eng *engine.Engine) *MessageHandler {
	return &MessageHandler{conversations: conversations, messages: messages, engine: eng}
}

// History returns recent messages for a conversation, oldest first.
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	if _, err := h.conversations.GetForParticipant(c.Request.Context(), convID, userID); err != nil {
		writeError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	items, err := h.messages.GetConversationMessages(c.Request.Context(), convID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]httpdto.MessageDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, fromMessage(item))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MessagesResponse{Messages: dtos}))
}

// Send posts a message over REST. The same engine path runs regardless of
// whether the client used the socket or this endpoint.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	msg, err := h.engine.Send(c.Request.Context(), engine.SendInput{
		ConversationID: convID,
		SenderID:       userID,
		Body:           req.Body,
		AttachmentURL:  req.AttachmentURL,
		AttachmentKind: req.AttachmentKind,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(fromMessage(msg)))
}

// Edit updates a message body. Editing an already deleted message succeeds
// silently; the racing delete already converged the state.
func (h *MessageHandler) Edit(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	msgID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.engine.Edit(c.Request.Context(), msgID, userID, req.Body); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Delete removes a message. The endpoint is idempotent: deleting a message
// that is already gone still returns success, and derived state is recomputed
// either way.
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}
	msgID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	if _, err := h.conversations.GetForParticipant(c.Request.Context(), convID, userID); err != nil {
		writeError(c, err)
		return
	}

	if err := h.engine.Delete(c.Request.Context(), convID, msgID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// MarkRead marks every unread message in the conversation as read by the
// caller.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid conversation id", "INVALID_REQUEST"))
		return
	}

	if err := h.engine.MarkAsRead(c.Request.Context(), convID, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func fromMessage(m message.Message) httpdto.MessageDTO {
	dto := httpdto.MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
	if m.AttachmentURL.Valid {
		dto.AttachmentURL = m.AttachmentURL.String
	}
	if m.AttachmentKind.Valid {
		dto.AttachmentKind = m.AttachmentKind.String
	}
	if m.EditedAt.Valid {
		t := m.EditedAt.Time
		dto.EditedAt = &t
	}
	return dto
}
