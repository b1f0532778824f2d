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

// Orchestrator is satisfied by *services.OrchestrationService.
type Orchestrator interface {
	Evaluate(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error)
	MarketReality(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error)
	BuildPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error)
	LaunchPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error)
}

// Generator is satisfied by *services.GenerationService.
type Generator interface {
	Generate(ctx context.Context, userID, startupID uuid.UUID, kind models.ArtifactKind) (any, error)
}

// Exporter is satisfied by *services.ExportService.
type Exporter interface {
	Export(ctx context.Context, userID, startupID uuid.UUID) (*models.ExportResponse, error)
}

type ActionsHandler struct {
	orchestrator Orchestrator
	generator    Generator
	exporter     Exporter
}

func NewActionsHandler(orchestrator Orchestrator, generator Generator, exporter Exporter) *ActionsHandler {
	return &ActionsHandler{
		orchestrator: orchestrator,
		generator:    generator,
		exporter:     exporter,
	}
}

type actionFunc func(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error)

// run executes an orchestration. Failures inside the orchestration come back
// as a 200 with success false; only precondition errors map to HTTP errors.
func (h *ActionsHandler) run(c *gin.Context, stage models.Stage, action actionFunc) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}

	res, err := action(c.Request.Context(), userID, startupID)
	if err != nil {
		if isFormPost(c) && errors.Is(err, services.ErrPremiumRequired) {
			c.Redirect(http.StatusSeeOther, "/dashboard/billing")
			return
		}
		respondError(c, err)
		return
	}

	if isFormPost(c) {
		redirectBack(c, stage.Path(startupID), res.Error)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Evaluate godoc
// @Summary     Evaluate the idea
// @Description Generates the evaluation and validation questions, then marks the startup evaluated
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.ActionResult
// @Failure     404 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/evaluate [post]
func (h *ActionsHandler) Evaluate(c *gin.Context) {
	h.run(c, models.StageValidation, h.orchestrator.Evaluate)
}

// MarketReality godoc
// @Summary     Research the market
// @Description Generates competitors and the differentiation analysis concurrently
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.ActionResult
// @Security    Bearer
// @Router      /api/projects/{projectId}/market-reality [post]
func (h *ActionsHandler) MarketReality(c *gin.Context) {
	h.run(c, models.StageMarket, h.orchestrator.MarketReality)
}

// BuildPlan godoc
// @Summary     Generate the build plan
// @Description MVP scope, tech stack, roadmap and tasks in order. Premium only.
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.ActionResult
// @Failure     402 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/build-plan [post]
func (h *ActionsHandler) BuildPlan(c *gin.Context) {
	h.run(c, models.StageBuild, h.orchestrator.BuildPlan)
}

// LaunchPlan godoc
// @Summary     Generate the launch plan
// @Description Go-to-market, costs and success metrics in order. Premium only.
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.ActionResult
// @Failure     402 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/launch-plan [post]
func (h *ActionsHandler) LaunchPlan(c *gin.Context) {
	h.run(c, models.StageLaunch, h.orchestrator.LaunchPlan)
}

// Generate godoc
// @Summary     Generate one artifact
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Param       kind path string true "Artifact kind"
// @Success     200 {object} models.ActionResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ActionResult
// @Security    Bearer
// @Router      /api/projects/{projectId}/generate/{kind} [post]
func (h *ActionsHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}
	kind := models.ArtifactKind(c.Param("kind"))

	v, err := h.generator.Generate(c.Request.Context(), userID, startupID, kind)
	if isFormPost(c) {
		h.redirectAfterGenerate(c, startupID, kind, err)
		return
	}
	if err != nil {
		if generationFailed(err) {
			c.JSON(http.StatusUnprocessableEntity, models.ActionResult{Success: false, Error: err.Error(), FailedStep: string(kind)})
			return
		}
		respondError(c, err)
		return
	}

	if tasks, ok := v.([]models.Task); ok {
		resp := make([]models.TaskResponse, len(tasks))
		for i := range tasks {
			resp[i] = models.NewTaskResponse(&tasks[i])
		}
		v = resp
	}
	c.JSON(http.StatusOK, models.ActionResult{Success: true, Completed: []string{string(kind)}, Data: v})
}

func (h *ActionsHandler) redirectAfterGenerate(c *gin.Context, startupID uuid.UUID, kind models.ArtifactKind, err error) {
	switch {
	case err == nil, generationFailed(err), errors.Is(err, services.ErrMissingContext):
	case errors.Is(err, services.ErrPremiumRequired):
		c.Redirect(http.StatusSeeOther, "/dashboard/billing")
		return
	default:
		respondError(c, err)
		return
	}

	stage := models.StageValidation
	if stages := models.StagesShowing(kind); len(stages) > 0 {
		stage = stages[0]
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	redirectBack(c, stage.Path(startupID), msg)
}

// generationFailed reports whether err came from the model call or its
// validation rather than from a precondition or the store.
func generationFailed(err error) bool {
	if errors.Is(err, services.ErrGenerationFailed) {
		return true
	}
	var verr *schemas.ValidationError
	return errors.As(err, &verr)
}

// Export godoc
// @Summary     Export the plan
// @Description Uploads the startup, its artifacts and tasks as one JSON document. Premium only.
// @Tags        actions
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {object} models.ExportResponse
// @Failure     402 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/export [post]
func (h *ActionsHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}

	resp, err := h.exporter.Export(c.Request.Context(), userID, startupID)
	if err != nil {
		if isFormPost(c) && errors.Is(err, services.ErrPremiumRequired) {
			c.Redirect(http.StatusSeeOther, "/dashboard/billing")
			return
		}
		respondError(c, err)
		return
	}

	if isFormPost(c) {
		c.Redirect(http.StatusSeeOther, resp.URL)
		return
	}
	c.JSON(http.StatusOK, resp)
}
