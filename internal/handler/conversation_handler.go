package handler

import (
	"net/http"

	"chatsync/internal/domain/conversation"
	"chatsync/internal/engine"
	"chatsync/internal/services"
	"chatsync/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	service *services.ConversationService
	engine  *engine.Engine
}

func NewConversationHandler(service *services.ConversationService, eng *engine.Engine) *ConversationHandler {
	return &ConversationHandler{service: service, engine: eng}
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	items, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]httpdto.ConversationDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, fromConversation(item))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ConversationsResponse{Conversations: dtos}))
}

// CreateGroup commits the group and fans the creation event out to every
// participant's personal channel.
func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	var req httpdto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	creatorID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, idStr := range req.ParticipantIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid participant id", "INVALID_REQUEST"))
			return
		}
		participantIDs = append(participantIDs, id)
	}

	conv, err := h.service.CreateGroup(c.Request.Context(), services.CreateGroupInput{
		CreatorID:      creatorID,
		Subject:        req.Subject,
		AvatarURL:      req.AvatarURL,
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.engine.GroupCreated(c.Request.Context(), conv.ID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(fromConversation(conv)))
}

// CreateDirect returns the 1:1 conversation with another user, creating it on
// first contact.
func (h *ConversationHandler) CreateDirect(c *gin.Context) {
	var req httpdto.CreateDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	conv, err := h.service.EnsureDirect(c.Request.Context(), userID, otherID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(fromConversation(conv)))
}

func fromConversation(conv conversation.Conversation) httpdto.ConversationDTO {
	dto := httpdto.ConversationDTO{
		ID:        conv.ID.String(),
		IsGroup:   conv.IsGroup,
		Subject:   conv.Subject.String,
		AvatarURL: conv.AvatarURL.String,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	if conv.CreatedBy.Valid {
		dto.CreatedBy = conv.CreatedBy.UUID.String()
	}
	for _, p := range conv.Participants {
		dto.Participants = append(dto.Participants, p.UserID.String())
		if p.Role == conversation.RoleAdmin {
			dto.Admins = append(dto.Admins, p.UserID.String())
		}
	}
	return dto
}
