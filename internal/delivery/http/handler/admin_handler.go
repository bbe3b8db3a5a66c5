package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/matchchoice"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/taste"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/weights"
)

type AdminHandler struct {
	compatibilityUseCase *compatibility.CompatibilityUseCase
	learnerUseCase       *taste.LearnerUseCase
	weightsUseCase       *weights.WeightsUseCase
	choiceUseCase        *matchchoice.MatchChoiceUseCase
}

func NewAdminHandler(
	compatibilityUseCase *compatibility.CompatibilityUseCase,
	learnerUseCase *taste.LearnerUseCase,
	weightsUseCase *weights.WeightsUseCase,
	choiceUseCase *matchchoice.MatchChoiceUseCase,
) *AdminHandler {
	return &AdminHandler{
		compatibilityUseCase: compatibilityUseCase,
		learnerUseCase:       learnerUseCase,
		weightsUseCase:       weightsUseCase,
		choiceUseCase:        choiceUseCase,
	}
}

// RecalculateRequest selects one user or the whole population.
type RecalculateRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	All    bool       `json:"all"`
}

// CountResponse reports how many pairs an operation produced. Error is set
// when the run committed some pairs but not all.
type CountResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Recalculate handles POST /admin/recalculate
// @Summary Recalculate compatibility
// @Description Recompute one user's pool ({"user_id": ...}) or the whole cache ({"all": true}).
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RecalculateRequest true "Target"
// @Success 200 {object} CountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} CountResponse "partial run: committed count plus error"
// @Router /admin/recalculate [post]
func (h *AdminHandler) Recalculate(c *gin.Context) {
	var req RecalculateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.All == (req.UserID != nil) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "set exactly one of user_id or all"})
		return
	}

	var (
		n   int
		err error
	)
	if req.All {
		n, err = h.compatibilityUseCase.RecalculateAll(c.Request.Context())
	} else {
		n, err = h.compatibilityUseCase.RecalculateUser(c.Request.Context(), *req.UserID)
	}
	if err != nil {
		if n > 0 {
			c.JSON(http.StatusInternalServerError, CountResponse{Count: n, Error: "recalculation finished with errors"})
			return
		}
		respondError(c, err, "recalculation failed")
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: n})
}

// LearnTaste handles POST /admin/taste/learn
// @Summary Run taste learning
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} taste.Stats
// @Failure 500 {object} ErrorResponse
// @Router /admin/taste/learn [post]
func (h *AdminHandler) LearnTaste(c *gin.Context) {
	stats, err := h.learnerUseCase.Run(c.Request.Context())
	if err != nil {
		respondError(c, err, "taste learning failed")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWeights handles GET /admin/weights
// @Summary Get match weights
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.MatchWeights
// @Router /admin/weights [get]
func (h *AdminHandler) GetWeights(c *gin.Context) {
	w, err := h.weightsUseCase.Current(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to get weights")
		return
	}

	c.JSON(http.StatusOK, w)
}

// UpdateWeights handles PUT /admin/weights
// @Summary Update match weights
// @Description Each weight in [0, 0.5], sum at most 1. Clears the score cache.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.MatchWeights true "Weights"
// @Success 200 {object} domain.MatchWeights
// @Failure 400 {object} ErrorResponse
// @Router /admin/weights [put]
func (h *AdminHandler) UpdateWeights(c *gin.Context) {
	var w domain.MatchWeights
	if !bindJSON(c, &w) {
		return
	}

	if err := h.weightsUseCase.Update(c.Request.Context(), w); err != nil {
		respondError(c, err, "failed to update weights")
		return
	}

	c.JSON(http.StatusOK, w)
}

// ResolveEvent handles POST /admin/events/:event_id/resolve
// @Summary Re-resolve event matches
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} CountResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/events/{event_id}/resolve [post]
func (h *AdminHandler) ResolveEvent(c *gin.Context) {
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	n, err := h.choiceUseCase.ResolveEvent(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err, "failed to resolve event")
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: n})
}
