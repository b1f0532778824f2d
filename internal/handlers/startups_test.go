package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"startup-os-backend/internal/handlers"
	"startup-os-backend/internal/models"
)

func newStartupsRouter(userID uuid.UUID, startups *stubStartups) http.Handler {
	h := handlers.NewStartupsHandler(startups)
	router := newRouter(userID)
	router.POST("/api/startups", h.CreateStartup)
	router.GET("/api/startups", h.ListStartups)
	router.GET("/api/projects/:projectId", h.GetStartup)
	router.POST("/api/projects/:projectId/status", h.UpdateStatus)
	return router
}

func TestCreateStartup_JSON(t *testing.T) {
	userID := uuid.New()
	startups := newStubStartups(userID)
	router := newStartupsRouter(userID, startups)

	w := doJSON(router, http.MethodPost, "/api/startups", `{"idea":"Subscription box for indie board games","businessType":"B2C"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.StartupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Subscription box for indie board games", resp.Idea)
	assert.Equal(t, "b2c", startups.created.BusinessType)
}

func TestCreateStartup_Form(t *testing.T) {
	userID := uuid.New()
	startups := newStubStartups(userID)
	router := newStartupsRouter(userID, startups)

	w := doForm(router, "/api/startups", "idea=Subscription+box+for+indie+board+games&geography=EU")

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Regexp(t, `^/dashboard/[0-9a-f-]{36}$`, w.Header().Get("Location"))
	assert.Equal(t, "EU", startups.created.Geography)
}

func TestCreateStartup_Invalid(t *testing.T) {
	userID := uuid.New()
	router := newStartupsRouter(userID, newStubStartups(userID))

	w := doJSON(router, http.MethodPost, "/api/startups", `{"idea":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "idea")

	w = doForm(router, "/api/startups", "idea=short")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/dashboard?error=")
}

func TestCreateStartup_Unauthenticated(t *testing.T) {
	router := newStartupsRouter(uuid.Nil, newStubStartups(uuid.New()))

	w := doJSON(router, http.MethodPost, "/api/startups", `{"idea":"Subscription box for indie board games"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStartup(t *testing.T) {
	userID := uuid.New()
	startups := newStubStartups(userID)
	startup := startups.add()

	w := doJSON(newStartupsRouter(userID, startups), http.MethodGet, "/api/projects/"+startup.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(newStartupsRouter(uuid.New(), startups), http.MethodGet, "/api/projects/"+startup.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(newStartupsRouter(userID, startups), http.MethodGet, "/api/projects/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	userID := uuid.New()
	startups := newStubStartups(userID)
	startup := startups.add()
	router := newStartupsRouter(userID, startups)
	path := "/api/projects/" + startup.ID.String() + "/status"

	w := doJSON(router, http.MethodPost, path, `{"status":"completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCompleted, startups.status)

	w = doJSON(router, http.MethodPost, path, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doForm(router, path, "status=in_progress")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, models.StageDecision.Path(startup.ID), w.Header().Get("Location"))
}
