package agent

import (
	"context"
	"encoding/json"

	"github.com/flemzord/sloop/internal/provider"
	"github.com/flemzord/sloop/internal/tool"
)

// Observer receives loop events. Callbacks run synchronously on the loop's
// goroutine; a panicking observer aborts the run, which then fails with the
// panic message.
type Observer interface {
	// OnIteration is called after every model call.
	OnIteration(ctx context.Context, iteration int, resp provider.Response, st *State)

	// OnToolExecution is called after every tool invocation.
	OnToolExecution(ctx context.Context, name string, input json.RawMessage, result tool.Result)

	// OnReflection is called after each critique in the Reflection loop.
	OnReflection(ctx context.Context, index, score int, feedback string)

	// OnStepComplete is called after each executed step in the Plan-Execute loop.
	OnStepComplete(ctx context.Context, result StepResult)

	// OnPlanCreated is called once the initial plan has been parsed.
	OnPlanCreated(ctx context.Context, steps []string)
}

// NopObserver implements Observer with no-op methods. Embed it to implement
// only the callbacks you care about.
type NopObserver struct{}

// OnIteration implements Observer.
func (NopObserver) OnIteration(context.Context, int, provider.Response, *State) {}

// OnToolExecution implements Observer.
func (NopObserver) OnToolExecution(context.Context, string, json.RawMessage, tool.Result) {}

// OnReflection implements Observer.
func (NopObserver) OnReflection(context.Context, int, int, string) {}

// OnStepComplete implements Observer.
func (NopObserver) OnStepComplete(context.Context, StepResult) {}

// OnPlanCreated implements Observer.
func (NopObserver) OnPlanCreated(context.Context, []string) {}

// Observers fans every event out to each observer in order.
type Observers []Observer

// OnIteration implements Observer.
func (o Observers) OnIteration(ctx context.Context, iteration int, resp provider.Response, st *State) {
	for _, obs := range o {
		obs.OnIteration(ctx, iteration, resp, st)
	}
}

// OnToolExecution implements Observer.
func (o Observers) OnToolExecution(ctx context.Context, name string, input json.RawMessage, result tool.Result) {
	for _, obs := range o {
		obs.OnToolExecution(ctx, name, input, result)
	}
}

// OnReflection implements Observer.
func (o Observers) OnReflection(ctx context.Context, index, score int, feedback string) {
	for _, obs := range o {
		obs.OnReflection(ctx, index, score, feedback)
	}
}

// OnStepComplete implements Observer.
func (o Observers) OnStepComplete(ctx context.Context, result StepResult) {
	for _, obs := range o {
		obs.OnStepComplete(ctx, result)
	}
}

// OnPlanCreated implements Observer.
func (o Observers) OnPlanCreated(ctx context.Context, steps []string) {
	for _, obs := range o {
		obs.OnPlanCreated(ctx, steps)
	}
}

// Interface guards.
var (
	_ Observer = NopObserver{}
	_ Observer = Observers(nil)
)
