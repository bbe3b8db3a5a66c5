package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// RejectionResponse is returned when a choice submission is turned down.
type RejectionResponse struct {
	Error  string                  `json:"error"`
	Reason domain.SubmissionReason `json:"reason"`
}

func init() {
	// request DTOs are closed: an unknown field is a client error
	binding.EnableDecoderDisallowUnknownFields = true
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to status codes. Anything unknown is a 500
// with the generic message.
func respondError(c *gin.Context, err error, message string) {
	var se *domain.SubmissionError
	if errors.As(err, &se) {
		status := http.StatusUnprocessableEntity
		if se.Reason == domain.ReasonAlreadySubmitted {
			status = http.StatusConflict
		}
		c.JSON(status, RejectionResponse{Error: se.Error(), Reason: se.Reason})
		return
	}

	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrScoreNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotOnRoster),
		errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrVIPRequired):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrRatingAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCannotRateSelf),
		errors.Is(err, domain.ErrInvalidWeights),
		errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
	}
}
