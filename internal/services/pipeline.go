package services

import (
	"context"
	"sync"
)

// Step is one named unit of an orchestration.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepOutcome records how a step ended.
type StepOutcome struct {
	Name string
	Err  error
}

// PipelineResult is the outcome of a sequential run. FailedStep and Err are
// empty when every step succeeded.
type PipelineResult struct {
	Completed  []string
	FailedStep string
	Err        error
}

func (r PipelineResult) OK() bool {
	return r.Err == nil
}

// Pipeline runs its steps in order and stops at the first error.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Run(ctx context.Context) PipelineResult {
	var res PipelineResult
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			res.FailedStep = step.Name
			res.Err = err
			return res
		}
		if err := step.Run(ctx); err != nil {
			res.FailedStep = step.Name
			res.Err = err
			return res
		}
		res.Completed = append(res.Completed, step.Name)
	}
	return res
}

// RunSettled runs every step concurrently and waits for all of them. Outcomes
// are returned in the order the steps were given.
func RunSettled(ctx context.Context, steps ...Step) []StepOutcome {
	outcomes := make([]StepOutcome, len(steps))

	var wg sync.WaitGroup
	for i, step := range steps {
		wg.Add(1)
		go func(i int, step Step) {
			defer wg.Done()
			outcomes[i] = StepOutcome{Name: step.Name, Err: step.Run(ctx)}
		}(i, step)
	}
	wg.Wait()

	return outcomes
}
