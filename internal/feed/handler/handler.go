package handler

import (
	"net/http"

	"prmhub_backend/internal/feed/service"
	"prmhub_backend/internal/feed/transport"
	"prmhub_backend/platform/httpkit"
	"prmhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for feed reactions and comments.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new feed handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers feed routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/entries/:entryId/reactions", h.ToggleReaction)
	rg.GET("/entries/:entryId/reactions", h.ListReactions)
	rg.POST("/entries/:entryId/comments", h.CreateComment)
	rg.GET("/entries/:entryId/comments", h.ListComments)
	rg.DELETE("/comments/:commentId", h.DeleteComment)
}

func (h *Handler) ToggleReaction(c *gin.Context) {
	entryID, ok := parseParamID(c, "entryId")
	if !ok {
		return
	}

	var req transport.ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ToggleReaction(c.Request.Context(), entryID, req.ReactionType, identity.UserID(), identity.OrganizationID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ListReactions(c *gin.Context) {
	entryID, ok := parseParamID(c, "entryId")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListReactions(c.Request.Context(), entryID, identity.UserID(), identity.OrganizationID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) CreateComment(c *gin.Context) {
	entryID, ok := parseParamID(c, "entryId")
	if !ok {
		return
	}

	var req transport.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateComment(c.Request.Context(), entryID, identity.UserID(), identity.OrganizationID(), req.Body)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) ListComments(c *gin.Context) {
	entryID, ok := parseParamID(c, "entryId")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListComments(c.Request.Context(), entryID, identity.OrganizationID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, ok := parseParamID(c, "commentId")
	if !ok {
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	err := h.svc.DeleteComment(c.Request.Context(), commentID, identity.UserID(), identity.OrganizationID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.NoContent(c)
}

func parseParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
