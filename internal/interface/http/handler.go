package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/karenlo/mapchat/internal/domain/assistant"
	apperrors "github.com/karenlo/mapchat/pkg/errors"
)

// Default map center used when a client starts a conversation without
// coordinates (geolocation denied or still pending).
const (
	defaultLatitude  = 40.7589
	defaultLongitude = -73.9851
)

// Handler wires the HTTP transport to the assistant service.
type Handler struct {
	svc    assistant.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc assistant.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

type createConversationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type submitMessageRequest struct {
	Text string `json:"text"`
}

// CreateConversation starts a new conversation session.
func (h *Handler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	loc := assistant.Location{Latitude: defaultLatitude, Longitude: defaultLongitude}
	if req.Latitude != nil && req.Longitude != nil {
		loc = assistant.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	conv, err := h.svc.StartConversation(c.Request.Context(), loc)
	if err != nil {
		abortWithError(c, mapServiceError(err, "conversation_failed"))
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// GetConversation returns the full conversation, turn log included.
func (h *Handler) GetConversation(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}
	conv, err := h.svc.Conversation(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, mapServiceError(err, "conversation_failed"))
		return
	}
	c.JSON(http.StatusOK, conv)
}

// SubmitMessage runs one conversation turn and returns the ai message.
func (h *Handler) SubmitMessage(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}
	var req submitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	msg, err := h.svc.SubmitQuery(c.Request.Context(), id, req.Text)
	if err != nil {
		abortWithError(c, mapServiceError(err, "turn_failed"))
		return
	}
	c.JSON(http.StatusOK, msg)
}

// ListMessages returns the ordered turn log.
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}
	history, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, mapServiceError(err, "conversation_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

// Latest returns the most recent ai turn's results and suggestions.
func (h *Handler) Latest(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}
	snapshot, err := h.svc.Latest(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, mapServiceError(err, "conversation_failed"))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListQueries returns the query log for a conversation.
func (h *Handler) ListQueries(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}
	records, err := h.svc.QueryHistory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, mapServiceError(err, "conversation_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": records})
}

func (h *Handler) conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "conversation id must be a UUID", err))
		return uuid.Nil, false
	}
	return id, true
}

func mapServiceError(err error, code string) *HTTPError {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
	case apperrors.IsCode(err, "turn_in_progress"):
		status = http.StatusConflict
	case apperrors.IsCode(err, "storage_error"):
		status = http.StatusInternalServerError
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
