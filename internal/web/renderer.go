package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageBilling   = "billing"
	PageStage     = "stage"
	PageNotFound  = "not_found"
)

var pageNames = []string{PageLogin, PageDashboard, PageBilling, PageStage, PageNotFound}

// Page holds what the layout needs from every page.
type Page struct {
	SignedIn bool
}

type LoginPage struct {
	Page
	Error        string
	AuthorizeURL string
}

type DashboardPage struct {
	Page
	Startups      []models.Startup
	Premium       bool
	Error         string
	BusinessTypes []string
	FounderTypes  []string
}

func NewDashboardPage(startups []models.Startup, premium bool) DashboardPage {
	return DashboardPage{
		Page:          Page{SignedIn: true},
		Startups:      startups,
		Premium:       premium,
		BusinessTypes: []string{"b2b", "b2c", "marketplace", "saas", "ecommerce", "other"},
		FounderTypes:  []string{"solo_technical", "solo_non_technical", "team"},
	}
}

type BillingPage struct {
	Page
	Subscription models.SubscriptionResponse
	Error        string
}

// StageAction is the main button of a stage page.
type StageAction struct {
	Label  string
	Path   string
	Fields map[string]string
}

type StagePage struct {
	Page
	*services.StageView
	Stages     []models.Stage
	Action     *StageAction
	Exportable bool
	Error      string
}

func NewStagePage(view *services.StageView, errMsg string) StagePage {
	return StagePage{
		Page:       Page{SignedIn: true},
		StageView:  view,
		Stages:     models.Stages,
		Action:     stageAction(view.Stage, view.Startup.ID),
		Exportable: view.Stage == models.StageDecision && view.Premium,
		Error:      errMsg,
	}
}

func stageAction(stage models.Stage, startupID uuid.UUID) *StageAction {
	base := "/api/projects/" + startupID.String()
	switch stage {
	case models.StageValidation:
		return &StageAction{Label: "Evaluate idea", Path: base + "/evaluate"}
	case models.StageMarket:
		return &StageAction{Label: "Research the market", Path: base + "/market-reality"}
	case models.StageScope:
		return &StageAction{Label: "Scope the MVP", Path: base + "/generate/" + string(models.KindMVP)}
	case models.StageBuild:
		return &StageAction{Label: "Generate build plan", Path: base + "/build-plan"}
	case models.StageLaunch:
		return &StageAction{Label: "Generate launch plan", Path: base + "/launch-plan"}
	case models.StageDecision:
		return &StageAction{
			Label:  "Mark as completed",
			Path:   base + "/status",
			Fields: map[string]string{"status": string(models.StatusCompleted)},
		}
	}
	return nil
}

// Renderer renders the embedded page templates. Every page is parsed together
// with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render executes the named page into a buffer so a failed render never
// leaves a half-written response.
func (r *Renderer) Render(name string, data any) ([]byte, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
