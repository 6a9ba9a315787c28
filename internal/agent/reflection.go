package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/sloop/pkg/message"
)

// Metadata keys written by the Reflection loop.
const (
	MetaReflections = "reflections"
	MetaFinalScore  = "final_score"
)

const generateFailedMessage = "Failed to generate initial output"

// Reflection is one critique round.
type Reflection struct {
	Index    int    `json:"index"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// ReflectionLoop implements Generate, Reflect, Refine: draft an answer, have
// the model critique and score it, and revise until the score reaches the
// quality threshold or the refinement budget is spent.
type ReflectionLoop struct {
	base
	cfg ReflectionConfig
}

// Interface guard.
var _ Loop = (*ReflectionLoop)(nil)

// NewReflection creates a Reflection loop.
func NewReflection(cfg ReflectionConfig, opts ...Option) *ReflectionLoop {
	return &ReflectionLoop{base: newBase(NameReflection, opts), cfg: cfg.withDefaults()}
}

// Execute implements Loop.
func (l *ReflectionLoop) Execute(ctx context.Context, st *State) *State {
	if st.IsTerminal() {
		return st
	}
	l.supervise(st, func() error { return l.run(ctx, st) })
	return st
}

func (l *ReflectionLoop) run(ctx context.Context, st *State) error {
	output, err := l.respond(ctx, st, st.Task())
	if errors.Is(err, ErrIterationBound) {
		st.Fail(fmt.Sprintf(maxIterationsMessage, st.MaxIterations()))
		return nil
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(output) == "" {
		st.Fail(generateFailedMessage)
		return nil
	}

	var reflections []Reflection
	for i := 1; i <= l.cfg.MaxRefinements; i++ {
		feedback, err := l.reflect(ctx, st, output)
		if errors.Is(err, ErrIterationBound) {
			break
		}
		if err != nil {
			return err
		}

		score := ExtractScore(feedback)
		reflections = append(reflections, Reflection{
			Index:    i,
			Score:    score,
			Feedback: truncateRunes(feedback, feedbackLimit),
		})
		l.observers.OnReflection(ctx, i, score, feedback)
		l.logger.Debug("reflection scored", "run_id", st.ID, "index", i, "score", score)

		if score >= l.cfg.QualityThreshold {
			break
		}

		refined, err := l.respond(ctx, st, refinePrompt(st.Task(), output, feedback))
		if errors.Is(err, ErrIterationBound) {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(refined) != "" {
			output = refined
		}
	}

	st.SetMetadata(MetaReflections, reflections)
	if n := len(reflections); n > 0 {
		st.SetMetadata(MetaFinalScore, reflections[n-1].Score)
	}
	st.AddMessage(message.NewAssistant(message.NewTextBlock(output)))
	st.Complete(output)
	return nil
}

// reflect asks the model for a text-only critique of output.
func (l *ReflectionLoop) reflect(ctx context.Context, st *State, output string) (string, error) {
	msgs := []message.Message{message.NewUserText(reflectPrompt(st.Task(), output, l.cfg.Criteria))}
	resp, err := l.call(ctx, st, msgs, false)
	if err != nil {
		return "", err
	}
	return message.TextContent(resp.Content), nil
}
