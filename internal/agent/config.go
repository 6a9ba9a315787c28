package agent

// Default values for loop configurations.
const (
	DefaultMaxRefinements   = 3
	DefaultQualityThreshold = 8
	feedbackLimit           = 500
)

// DefaultCriteria are the reflection criteria used when none are configured.
var DefaultCriteria = []string{"correctness", "completeness", "clarity", "quality"}

// ReActConfig controls the ReAct loop. Both guards are disabled when zero.
type ReActConfig struct {
	// TokenBudget is the cumulative token limit (input + output).
	// Zero means unlimited.
	TokenBudget int

	// LoopThreshold is how many times the same tool call (name + args)
	// can repeat before the loop is considered stuck. Zero disables it.
	LoopThreshold int
}

// ReflectionConfig controls the Reflection loop.
type ReflectionConfig struct {
	// MaxRefinements caps reflect/refine rounds. Default: 3.
	MaxRefinements int

	// QualityThreshold stops refinement once a critique scores at or above it.
	// Default: 8.
	QualityThreshold int

	// Criteria are named in the critique prompt. Default: DefaultCriteria.
	Criteria []string
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c ReflectionConfig) withDefaults() ReflectionConfig {
	if c.MaxRefinements <= 0 {
		c.MaxRefinements = DefaultMaxRefinements
	}
	if c.QualityThreshold <= 0 {
		c.QualityThreshold = DefaultQualityThreshold
	}
	if len(c.Criteria) == 0 {
		c.Criteria = DefaultCriteria
	}
	return c
}

// PlanExecuteConfig controls the Plan-Execute loop.
type PlanExecuteConfig struct {
	// DisableReplan turns off revision of the remaining steps after a step
	// result that looks like a failure.
	DisableReplan bool
}
