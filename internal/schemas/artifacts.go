package schemas

type Evaluation struct {
	Score          int            `json:"score" validate:"gte=0,lte=100"`
	Verdict        string         `json:"verdict" validate:"required,oneof=pursue refine pivot drop"`
	Summary        string         `json:"summary" validate:"required"`
	Strengths      []string       `json:"strengths" validate:"required,min=1,dive,required"`
	Weaknesses     []string       `json:"weaknesses" validate:"required,min=1,dive,required"`
	Risks          []string       `json:"risks" validate:"dive,required"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
}

type ScoreBreakdown struct {
	Problem      int `json:"problem" validate:"gte=0,lte=10"`
	Market       int `json:"market" validate:"gte=0,lte=10"`
	Feasibility  int `json:"feasibility" validate:"gte=0,lte=10"`
	Monetization int `json:"monetization" validate:"gte=0,lte=10"`
}

type Questions struct {
	Questions []ValidationQuestion `json:"questions" validate:"required,min=1,dive"`
}

// ValidationQuestion is something the founder should ask potential customers.
type ValidationQuestion struct {
	Question string `json:"question" validate:"required"`
	Purpose  string `json:"purpose" validate:"required"`
	Audience string `json:"audience,omitempty"`
}

type Competitors struct {
	Competitors      []Competitor `json:"competitors" validate:"required,min=1,dive"`
	MarketSaturation string       `json:"marketSaturation" validate:"required,oneof=low medium high"`
}

type Competitor struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	URL         string   `json:"url,omitempty" validate:"omitempty,url"`
	Pricing     string   `json:"pricing,omitempty"`
	Strengths   []string `json:"strengths" validate:"dive,required"`
	Weaknesses  []string `json:"weaknesses" validate:"dive,required"`
}

// Analysis is the differentiation analysis shown next to the competitors.
type Analysis struct {
	Positioning     string   `json:"positioning" validate:"required"`
	Differentiators []string `json:"differentiators" validate:"required,min=1,dive,required"`
	MarketGaps      []string `json:"marketGaps" validate:"dive,required"`
	Threats         []string `json:"threats" validate:"dive,required"`
	UnfairAdvantage string   `json:"unfairAdvantage,omitempty"`
}

type MVPScope struct {
	Summary    string       `json:"summary" validate:"required"`
	Features   []MVPFeature `json:"features" validate:"required,min=1,dive"`
	OutOfScope []string     `json:"outOfScope" validate:"dive,required"`
}

type MVPFeature struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=must should could"`
	Effort      string `json:"effort" validate:"required,oneof=small medium large"`
}

type TechStack struct {
	Items     []StackItem `json:"items" validate:"required,min=1,dive"`
	Rationale string      `json:"rationale" validate:"required"`
}

type StackItem struct {
	Category string `json:"category" validate:"required,oneof=frontend backend database hosting ai auth payments analytics other"`
	Choice   string `json:"choice" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

type Roadmap struct {
	Phases     []RoadmapPhase `json:"phases" validate:"required,min=1,dive"`
	TotalWeeks int            `json:"totalWeeks" validate:"gte=0"`
}

type RoadmapPhase struct {
	Name          string   `json:"name" validate:"required"`
	DurationWeeks int      `json:"durationWeeks" validate:"required,gte=1"`
	Goals         []string `json:"goals" validate:"required,min=1,dive,required"`
	Milestones    []string `json:"milestones" validate:"dive,required"`
}

type TaskPlan struct {
	Tasks []Task `json:"tasks" validate:"required,min=1,dive"`
}

// Task is a generated work item. EstimateHours is a pointer so a missing
// estimate is told apart from an estimate of zero.
type Task struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Status        string   `json:"status" validate:"required,oneof=backlog in_progress blocked done"`
	EstimateHours *float64 `json:"estimateHours" validate:"required,gte=0,lte=1000"`
	SkillTag      string   `json:"skillTag" validate:"required,oneof=frontend backend ai business"`
}

type Costs struct {
	Currency     string     `json:"currency" validate:"required,len=3"`
	OneTime      []CostItem `json:"oneTime" validate:"dive"`
	Monthly      []CostItem `json:"monthly" validate:"required,min=1,dive"`
	TotalOneTime float64    `json:"totalOneTime" validate:"gte=0"`
	TotalMonthly float64    `json:"totalMonthly" validate:"gte=0"`
	Notes        string     `json:"notes,omitempty"`
}

type CostItem struct {
	Item     string   `json:"item" validate:"required"`
	Category string   `json:"category" validate:"required,oneof=infrastructure tooling marketing legal people other"`
	Amount   *float64 `json:"amount" validate:"required,gte=0"`
}

type GTMStrategy struct {
	TargetAudience  string       `json:"targetAudience" validate:"required"`
	Positioning     string       `json:"positioning" validate:"required"`
	PricingStrategy string       `json:"pricingStrategy" validate:"required"`
	Channels        []GTMChannel `json:"channels" validate:"required,min=1,dive"`
	LaunchSteps     []string     `json:"launchSteps" validate:"required,min=1,dive,required"`
}

type GTMChannel struct {
	Name     string `json:"name" validate:"required"`
	Tactic   string `json:"tactic" validate:"required"`
	Priority string `json:"priority" validate:"required,oneof=high medium low"`
}

type SuccessMetrics struct {
	NorthStar Metric   `json:"northStar"`
	Metrics   []Metric `json:"metrics" validate:"required,min=1,dive"`
}

type Metric struct {
	Name      string `json:"name" validate:"required"`
	Target    string `json:"target" validate:"required"`
	Frequency string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Category  string `json:"category" validate:"required,oneof=acquisition activation retention revenue referral"`
}
