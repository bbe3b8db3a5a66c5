package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/usecase/compatibility"
)

type CompatibilityHandler struct {
	compatibilityUseCase *compatibility.CompatibilityUseCase
}

func NewCompatibilityHandler(compatibilityUseCase *compatibility.CompatibilityUseCase) *CompatibilityHandler {
	return &CompatibilityHandler{
		compatibilityUseCase: compatibilityUseCase,
	}
}

// GetScore handles GET /compatibility/:user_id
// @Summary Get pair compatibility
// @Description Cached score between the caller and another user. 404 means not computed or excluded.
// @Tags compatibility
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "Other user ID"
// @Param narrate query bool false "Generate a narrative"
// @Success 200 {object} compatibility.ScoreView
// @Failure 404 {object} ErrorResponse
// @Router /compatibility/{user_id} [get]
func (h *CompatibilityHandler) GetScore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	narrate, _ := strconv.ParseBool(c.Query("narrate"))

	view, err := h.compatibilityUseCase.GetScore(c.Request.Context(), userID, otherID, narrate)
	if err != nil {
		respondError(c, err, "failed to get compatibility")
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListTop handles GET /compatibility
// @Summary Top matches
// @Tags compatibility
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max results (default and cap 100)"
// @Success 200 {array} compatibility.ScoreView
// @Router /compatibility [get]
func (h *CompatibilityHandler) ListTop(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		return
	}

	views, err := h.compatibilityUseCase.ListTopMatches(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "failed to list matches")
		return
	}

	c.JSON(http.StatusOK, views)
}
