package prompts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
	"startup-os-backend/internal/llm"
	"startup-os-backend/internal/models"
)

//go:embed prompts.yaml
var defaultPrompts []byte

type file struct {
	System  string                `yaml:"system"`
	Context string                `yaml:"context"`
	Kinds   map[string]kindPrompt `yaml:"kinds"`
}

type kindPrompt struct {
	Task  string `yaml:"task"`
	Shape string `yaml:"shape"`
}

// Section is prior output handed to the model as context.
type Section struct {
	Label string
	JSON  string
}

// Input is everything a prompt template can reference.
type Input struct {
	Idea         string
	TargetUsers  string
	BusinessType string
	Geography    string
	FounderType  string
	Context      []Section
}

func NewInput(s *models.Startup) *Input {
	return &Input{
		Idea:         s.Idea,
		TargetUsers:  s.TargetUsers.String,
		BusinessType: s.BusinessType.String,
		Geography:    s.Geography.String,
		FounderType:  s.FounderType.String,
	}
}

// With appends v as an indented JSON section. Nil values are skipped so
// optional context can be passed unconditionally.
func (in *Input) With(label string, v any) *Input {
	if isNil(v) {
		return in
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return in
	}
	in.Context = append(in.Context, Section{Label: label, JSON: string(b)})
	return in
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	if raw, ok := v.(json.RawMessage); ok {
		return len(raw) == 0
	}
	b, err := json.Marshal(v)
	return err == nil && string(b) == "null"
}

type Library struct {
	system  string
	context *template.Template
	kinds   map[models.ArtifactKind]kindPrompt
}

// Load parses the embedded prompt file.
func Load() (*Library, error) {
	return Parse(defaultPrompts)
}

func Parse(data []byte) (*Library, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("prompts: payload is empty")
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("prompts: decode: %w", err)
	}
	if strings.TrimSpace(f.System) == "" {
		return nil, fmt.Errorf("prompts: system prompt is required")
	}

	tmpl, err := template.New("context").Option("missingkey=error").Parse(f.Context)
	if err != nil {
		return nil, fmt.Errorf("prompts: parse context template: %w", err)
	}

	lib := &Library{
		system:  strings.TrimSpace(f.System),
		context: tmpl,
		kinds:   make(map[models.ArtifactKind]kindPrompt, len(f.Kinds)),
	}
	for name, kp := range f.Kinds {
		if strings.TrimSpace(kp.Task) == "" {
			return nil, fmt.Errorf("prompts: %s: task is required", name)
		}
		lib.kinds[models.ArtifactKind(name)] = kp
	}
	return lib, nil
}

func (l *Library) Has(kind models.ArtifactKind) bool {
	_, ok := l.kinds[kind]
	return ok
}

// Build renders the prompt for kind from in.
func (l *Library) Build(kind models.ArtifactKind, in *Input) (llm.Request, error) {
	kp, ok := l.kinds[kind]
	if !ok {
		return llm.Request{}, fmt.Errorf("prompts: no prompt for %q", kind)
	}

	var buf bytes.Buffer
	if err := l.context.Execute(&buf, in); err != nil {
		return llm.Request{}, fmt.Errorf("prompts: render %s: %w", kind, err)
	}
	buf.WriteString("\n\n")
	buf.WriteString(strings.TrimSpace(kp.Task))

	return llm.Request{
		System: l.system,
		Prompt: strings.TrimSpace(buf.String()),
		Shape:  strings.TrimSpace(kp.Shape),
	}, nil
}
