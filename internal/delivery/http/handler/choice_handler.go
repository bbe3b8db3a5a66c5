package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/speeddate-backend/internal/usecase/matchchoice"
)

type ChoiceHandler struct {
	choiceUseCase *matchchoice.MatchChoiceUseCase
}

func NewChoiceHandler(choiceUseCase *matchchoice.MatchChoiceUseCase) *ChoiceHandler {
	return &ChoiceHandler{
		choiceUseCase: choiceUseCase,
	}
}

// GetForm handles GET /events/:event_id/choices/form
// @Summary Get choice form
// @Tags choices
// @Security BearerAuth
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} matchchoice.ChoiceForm
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /events/{event_id}/choices/form [get]
func (h *ChoiceHandler) GetForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	form, err := h.choiceUseCase.GetChoiceForm(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err, "failed to get choice form")
		return
	}

	c.JSON(http.StatusOK, form)
}

// Submit handles POST /events/:event_id/choices
// @Summary Submit choices
// @Description Submit a date/friend/no choice for every candidate at once. Submissions are final.
// @Tags choices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event_id path string true "Event ID"
// @Param request body matchchoice.SubmitChoicesRequest true "Choices"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} RejectionResponse
// @Failure 422 {object} RejectionResponse
// @Router /events/{event_id}/choices [post]
func (h *ChoiceHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	var req matchchoice.SubmitChoicesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.choiceUseCase.SubmitChoices(c.Request.Context(), eventID, userID, req.Choices); err != nil {
		respondError(c, err, "failed to submit choices")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "choices submitted"})
}

// GetResults handles GET /events/:event_id/results
// @Summary Get mutual matches
// @Tags choices
// @Security BearerAuth
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {object} matchchoice.MatchResults
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /events/{event_id}/results [get]
func (h *ChoiceHandler) GetResults(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	results, err := h.choiceUseCase.GetMatchResults(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err, "failed to get results")
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetVIPBonus handles GET /events/:event_id/vip-bonus
// @Summary Who chose me
// @Description Everyone who picked date or friend for the caller. VIP only.
// @Tags choices
// @Security BearerAuth
// @Produce json
// @Param event_id path string true "Event ID"
// @Success 200 {array} matchchoice.Admirer
// @Failure 402 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /events/{event_id}/vip-bonus [get]
func (h *ChoiceHandler) GetVIPBonus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}

	admirers, err := h.choiceUseCase.GetVIPBonus(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err, "failed to get vip bonus")
		return
	}

	c.JSON(http.StatusOK, admirers)
}
