package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"startup-os-backend/internal/cache"
	"startup-os-backend/internal/middleware"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/services"
	"startup-os-backend/internal/web"
)

// PagesHandler serves the server-rendered pages. Renders are cached per
// route, user and tier; services evict them by route when data changes.
type PagesHandler struct {
	startups StartupManager
	subs     Subscriptions
	renderer PageRenderer
	cache    cache.PageCache
	logger   zerolog.Logger
}

func NewPagesHandler(startups StartupManager, subs Subscriptions, renderer PageRenderer, pageCache cache.PageCache, logger zerolog.Logger) *PagesHandler {
	return &PagesHandler{
		startups: startups,
		subs:     subs,
		renderer: renderer,
		cache:    pageCache,
		logger:   logger.With().Str("handler", "pages").Logger(),
	}
}

// renderFunc loads a page's data and names the template to render it with.
type renderFunc func(c *gin.Context, userID uuid.UUID, profile *models.Profile) (string, any, error)

func (h *PagesHandler) serve(c *gin.Context, load renderFunc) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	ctx := c.Request.Context()

	profile, err := h.subs.Status(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	tier := models.TierFreemium
	if profile.IsPremium(h.subs.Now()) {
		tier = models.TierPremium
	}
	key := cache.Key{Path: c.Request.URL.Path, UserID: userID.String(), Tier: string(tier)}
	// Pages carrying a one-off error banner are never cached.
	cacheable := c.Query("error") == ""

	if cacheable {
		if page, hit, err := h.cache.Get(ctx, key); err != nil {
			h.logger.Warn().Err(err).Str("key", key.String()).Msg("Page cache read failed")
		} else if hit {
			c.Data(http.StatusOK, "text/html; charset=utf-8", page)
			return
		}
	}

	name, data, err := load(c, userID, profile)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.renderer.Render(name, data)
	if err != nil {
		h.fail(c, err)
		return
	}

	if cacheable {
		if err := h.cache.Set(ctx, key, page); err != nil {
			h.logger.Warn().Err(err).Str("key", key.String()).Msg("Page cache write failed")
		}
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *PagesHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		page, rerr := h.renderer.Render(web.PageNotFound, web.Page{SignedIn: true})
		if rerr == nil {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", page)
			return
		}
		err = rerr
	}
	if errors.Is(err, services.ErrUnauthenticated) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to serve page")
	c.String(http.StatusInternalServerError, "something went wrong, please try again")
}

// Dashboard lists the caller's startups next to the onboarding form.
func (h *PagesHandler) Dashboard(c *gin.Context) {
	h.serve(c, func(c *gin.Context, userID uuid.UUID, profile *models.Profile) (string, any, error) {
		startups, err := h.startups.List(c.Request.Context(), userID)
		if err != nil {
			return "", nil, err
		}
		page := web.NewDashboardPage(startups, profile.IsPremium(h.subs.Now()))
		page.Error = c.Query("error")
		return web.PageDashboard, page, nil
	})
}

func (h *PagesHandler) Billing(c *gin.Context) {
	h.serve(c, func(c *gin.Context, userID uuid.UUID, profile *models.Profile) (string, any, error) {
		return web.PageBilling, web.BillingPage{
			Page:         web.Page{SignedIn: true},
			Subscription: models.NewSubscriptionResponse(profile, h.subs.Now()),
			Error:        c.Query("error"),
		}, nil
	})
}

// Stage renders one stage of a project. The stage comes from the route; the
// project's landing route is the validation stage.
func (h *PagesHandler) Stage(c *gin.Context) {
	startupID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		h.fail(c, services.ErrNotFound)
		return
	}
	stage, ok := models.ParseStage(c.Param("stage"))
	if !ok {
		h.fail(c, services.ErrNotFound)
		return
	}
	if canonical := stage.Path(startupID); c.Request.URL.Path != canonical {
		c.Redirect(http.StatusMovedPermanently, canonical)
		return
	}

	h.serve(c, func(c *gin.Context, userID uuid.UUID, _ *models.Profile) (string, any, error) {
		view, err := h.startups.LoadStage(c.Request.Context(), userID, startupID, stage)
		if err != nil {
			return "", nil, err
		}
		return web.PageStage, web.NewStagePage(view, c.Query("error")), nil
	})
}

// Overview returns the caller's startups and subscription in one response,
// fetched in parallel, for clients that render the dashboard themselves.
func (h *PagesHandler) Overview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var (
		startups []models.Startup
		profile  *models.Profile
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		startups, err = h.startups.List(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile, err = h.subs.Status(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}

	resp := models.OverviewResponse{
		Startups:     make([]models.StartupResponse, len(startups)),
		Subscription: models.NewSubscriptionResponse(profile, h.subs.Now()),
	}
	for i := range startups {
		resp.Startups[i] = models.NewStartupResponse(&startups[i])
	}
	c.JSON(http.StatusOK, resp)
}
