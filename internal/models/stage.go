package models

import "github.com/google/uuid"

// Stage is one step of the founder journey, each with its own page.
type Stage string

const (
	StageValidation Stage = "validation"
	StageMarket     Stage = "market"
	StageScope      Stage = "scope"
	StageBuild      Stage = "build"
	StageLaunch     Stage = "launch"
	StageDecision   Stage = "decision"
)

var Stages = []Stage{StageValidation, StageMarket, StageScope, StageBuild, StageLaunch, StageDecision}

var stageKinds = map[Stage][]ArtifactKind{
	StageValidation: {KindEvaluation, KindQuestions},
	StageMarket:     {KindCompetitors, KindAnalysis},
	StageScope:      {KindMVP},
	StageBuild:      {KindMVP, KindTechStack, KindRoadmap, KindTasks},
	StageLaunch:     {KindGTM, KindCosts, KindMetrics},
	StageDecision:   {KindEvaluation, KindCosts, KindMetrics, KindAnalysis},
}

func ParseStage(s string) (Stage, bool) {
	if s == "" {
		return StageValidation, true
	}
	for _, st := range Stages {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Gated stages need an active premium subscription.
func (s Stage) Gated() bool {
	switch s {
	case StageBuild, StageLaunch, StageDecision:
		return true
	}
	return false
}

// Kinds lists the artifacts the stage page shows.
func (s Stage) Kinds() []ArtifactKind {
	return stageKinds[s]
}

// Path is the page route of the stage for a startup. The validation stage is
// the project's landing page.
func (s Stage) Path(startupID uuid.UUID) string {
	base := "/dashboard/" + startupID.String()
	if s == StageValidation {
		return base
	}
	return base + "/" + string(s)
}

func (s Stage) Title() string {
	switch s {
	case StageValidation:
		return "Validation"
	case StageMarket:
		return "Market reality"
	case StageScope:
		return "Scoping"
	case StageBuild:
		return "Build plan"
	case StageLaunch:
		return "Launch plan"
	case StageDecision:
		return "Decision"
	}
	return string(s)
}

// StagesShowing returns every stage whose page displays kind.
func StagesShowing(kind ArtifactKind) []Stage {
	var out []Stage
	for _, st := range Stages {
		for _, k := range stageKinds[st] {
			if k == kind {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

// KindGated reports whether kind is only ever shown on gated stages, in which
// case generating it needs premium.
func KindGated(kind ArtifactKind) bool {
	stages := StagesShowing(kind)
	if len(stages) == 0 {
		return false
	}
	for _, st := range stages {
		if !st.Gated() {
			return false
		}
	}
	return true
}
