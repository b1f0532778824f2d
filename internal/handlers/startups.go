package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/services"
)

// StartupManager is satisfied by *services.StartupService.
type StartupManager interface {
	Create(ctx context.Context, userID uuid.UUID, form schemas.OnboardingForm) (*models.Startup, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Startup, error)
	Get(ctx context.Context, userID, startupID uuid.UUID) (*models.Startup, error)
	UpdateStatus(ctx context.Context, userID, startupID uuid.UUID, status models.StartupStatus) error
	LoadStage(ctx context.Context, userID, startupID uuid.UUID, stage models.Stage) (*services.StageView, error)
}

type StartupsHandler struct {
	startups StartupManager
}

func NewStartupsHandler(startups StartupManager) *StartupsHandler {
	return &StartupsHandler{startups: startups}
}

// CreateStartup godoc
// @Summary     Create a startup
// @Description Stores the onboarding form. Form posts are redirected to the new project.
// @Tags        startups
// @Accept      json
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       request body schemas.OnboardingForm true "Onboarding form"
// @Success     201 {object} models.StartupResponse
// @Success     303
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/startups [post]
func (h *StartupsHandler) CreateStartup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var form schemas.OnboardingForm
	if err := c.ShouldBind(&form); err != nil {
		if isFormPost(c) {
			redirectBack(c, "/dashboard", "Could not read the form.")
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	startup, err := h.startups.Create(c.Request.Context(), userID, form)
	if err != nil {
		var verr *schemas.ValidationError
		if isFormPost(c) && errors.As(err, &verr) {
			redirectBack(c, "/dashboard", verr.Reason)
			return
		}
		respondError(c, err)
		return
	}

	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, models.StageValidation.Path(startup.ID))
		return
	}
	c.JSON(http.StatusCreated, models.NewStartupResponse(startup))
}

// ListStartups godoc
// @Summary     List startups
// @Tags        startups
// @Produce     json
// @Success     200 {array} models.StartupResponse
// @Security    Bearer
// @Router      /api/startups [get]
func (h *StartupsHandler) ListStartups(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	startups, err := h.startups.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.StartupResponse, len(startups))
	for i := range startups {
		resp[i] = models.NewStartupResponse(&startups[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetStartup godoc
// @Summary     Get a startup
// @Tags        startups
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.StartupResponse
// @Failure     404 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId} [get]
func (h *StartupsHandler) GetStartup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}

	startup, err := h.startups.Get(c.Request.Context(), userID, startupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewStartupResponse(startup))
}

// UpdateStatus godoc
// @Summary     Update a startup's status
// @Tags        startups
// @Accept      json
// @Param       projectId path string true "Project ID"
// @Param       request body models.UpdateStatusRequest true "New status"
// @Success     200 {object} models.ActionResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/status [post]
func (h *StartupsHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := schemas.Check(&req); err != nil {
		respondError(c, err)
		return
	}

	err := h.startups.UpdateStatus(c.Request.Context(), userID, startupID, models.StartupStatus(req.Status))
	if isFormPost(c) && (err == nil || statusFor(err) == http.StatusInternalServerError) {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		redirectBack(c, models.StageDecision.Path(startupID), msg)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ActionResult{Success: true, Completed: []string{"status"}})
}
