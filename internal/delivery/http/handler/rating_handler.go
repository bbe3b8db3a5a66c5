package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/usecase/rating"
)

type RatingHandler struct {
	ratingUseCase *rating.RatingUseCase
}

func NewRatingHandler(ratingUseCase *rating.RatingUseCase) *RatingHandler {
	return &RatingHandler{
		ratingUseCase: ratingUseCase,
	}
}

// SubmitRating handles POST /events/:event_id/ratings
// @Summary Rate a date
// @Description Rate another attendee after a date. One rating per partner per event.
// @Tags ratings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param request body rating.SubmitRatingRequest true "Rating"
// @Success 201 {object} domain.DateRating
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /events/{event_id}/ratings [post]
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	var req rating.SubmitRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.ratingUseCase.SubmitRating(c.Request.Context(), eventID, userID, req)
	if err != nil {
		respondError(c, err, "failed to submit rating")
		return
	}

	c.JSON(http.StatusCreated, r)
}
