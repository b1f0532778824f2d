package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind names one category of AI output stored per startup.
type ArtifactKind string

const (
	KindEvaluation  ArtifactKind = "evaluation"
	KindQuestions   ArtifactKind = "questions"
	KindCompetitors ArtifactKind = "competitors"
	KindAnalysis    ArtifactKind = "analysis"
	KindMVP         ArtifactKind = "mvp"
	KindTechStack   ArtifactKind = "tech_stack"
	KindRoadmap     ArtifactKind = "roadmap"
	KindCosts       ArtifactKind = "costs"
	KindGTM         ArtifactKind = "gtm"
	KindMetrics     ArtifactKind = "metrics"
)

// KindTasks is accepted by the generate endpoint but is stored in the tasks
// table rather than ai_outputs.
const KindTasks ArtifactKind = "tasks"

var AllArtifactKinds = []ArtifactKind{
	KindEvaluation, KindQuestions, KindCompetitors, KindAnalysis, KindMVP,
	KindTechStack, KindRoadmap, KindCosts, KindGTM, KindMetrics,
}

func (k ArtifactKind) Valid() bool {
	for _, known := range AllArtifactKinds {
		if k == known {
			return true
		}
	}
	return false
}

// AIOutput is one row of ai_outputs, keyed by (StartupID, Kind).
type AIOutput struct {
	StartupID uuid.UUID
	Kind      ArtifactKind
	Payload   json.RawMessage
	Model     string
	UpdatedAt time.Time
}
