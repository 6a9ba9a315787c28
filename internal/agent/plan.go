package agent

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/flemzord/sloop/pkg/message"
)

// Metadata keys written by the Plan-Execute loop.
const (
	MetaPlan        = "plan"
	MetaStepResults = "step_results"
	MetaReplans     = "replans"
)

// Failure messages of the Plan-Execute loop.
const (
	invalidPlanMessage    = "Failed to create a valid execution plan"
	stepsExhaustedMessage = "Maximum iterations reached before completing all steps."
)

// StepResult is the outcome of one executed plan step.
type StepResult struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// PlanExecute implements Plan, Execute, Monitor, Revise: ask for a numbered
// plan, execute each step with the previous results as context, revise the
// remaining steps when a result looks like a failure, then synthesize.
type PlanExecute struct {
	base
	cfg PlanExecuteConfig
}

// Interface guard.
var _ Loop = (*PlanExecute)(nil)

// NewPlanExecute creates a Plan-Execute loop.
func NewPlanExecute(cfg PlanExecuteConfig, opts ...Option) *PlanExecute {
	return &PlanExecute{base: newBase(NamePlanExecute, opts), cfg: cfg}
}

// Execute implements Loop.
func (p *PlanExecute) Execute(ctx context.Context, st *State) *State {
	if st.IsTerminal() {
		return st
	}
	p.supervise(st, func() error { return p.run(ctx, st) })
	return st
}

func (p *PlanExecute) run(ctx context.Context, st *State) error {
	steps, err := p.plan(ctx, st)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		st.Fail(invalidPlanMessage)
		return nil
	}
	p.observers.OnPlanCreated(ctx, slices.Clone(steps))
	p.logger.Info("plan created", "run_id", st.ID, "steps", len(steps))

	var (
		results  []StepResult
		replans  int
		exceeded bool
	)
	defer func() {
		st.SetMetadata(MetaPlan, steps)
		st.SetMetadata(MetaStepResults, results)
		st.SetMetadata(MetaReplans, replans)
	}()

	for i := 0; i < len(steps); i++ {
		if st.HasReachedMaxIterations() {
			exceeded = true
			break
		}

		out, err := p.respond(ctx, st, stepPrompt(st.Task(), i+1, steps[i], results))
		if errors.Is(err, ErrIterationBound) {
			exceeded = true
			break
		}
		if err != nil {
			return err
		}

		res := StepResult{Step: i + 1, Description: steps[i], Result: out}
		results = append(results, res)
		p.observers.OnStepComplete(ctx, res)

		if p.cfg.DisableReplan || !NeedsReplan(out) || st.HasReachedMaxIterations() {
			continue
		}
		revised, err := p.revise(ctx, st, results, steps[i+1:])
		if err != nil {
			return err
		}
		if len(revised) > 0 {
			steps = append(steps[:i+1:i+1], revised...)
			replans++
			p.logger.Info("plan revised", "run_id", st.ID, "after_step", i+1, "remaining", len(revised))
		}
	}

	if exceeded || st.HasReachedMaxIterations() {
		st.Fail(stepsExhaustedMessage)
		return nil
	}

	answer, err := p.respond(ctx, st, synthesizePrompt(st.Task(), results))
	if errors.Is(err, ErrIterationBound) {
		st.Fail(stepsExhaustedMessage)
		return nil
	}
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	st.AddMessage(message.NewAssistant(message.NewTextBlock(answer)))
	st.Complete(answer)
	return nil
}

// plan asks the model for a numbered step list.
func (p *PlanExecute) plan(ctx context.Context, st *State) ([]string, error) {
	msgs := []message.Message{message.NewUserText(planPrompt(st.Task()))}
	resp, err := p.call(ctx, st, msgs, false)
	if err != nil {
		return nil, err
	}
	return ParsePlan(message.TextContent(resp.Content)), nil
}

// revise asks the model for a replacement of the remaining steps.
func (p *PlanExecute) revise(ctx context.Context, st *State, done []StepResult, remaining []string) ([]string, error) {
	msgs := []message.Message{message.NewUserText(replanPrompt(st.Task(), done, remaining))}
	resp, err := p.call(ctx, st, msgs, false)
	if err != nil {
		return nil, err
	}
	return ParsePlan(message.TextContent(resp.Content)), nil
}
