package agent

import (
	"fmt"
	"strings"
)

func reflectPrompt(task, output string, criteria []string) string {
	return fmt.Sprintf(`Critically evaluate the response below.

Task:
%s

Response:
%s

Assess it for %s. List concrete problems and how to fix them, then give an overall score on its own line in the form "Score: N/10".`,
		task, output, strings.Join(criteria, ", "))
}

func refinePrompt(task, output, feedback string) string {
	return fmt.Sprintf(`Improve the response below using the feedback.

Task:
%s

Current response:
%s

Feedback:
%s

Reply with the improved response only.`, task, output, feedback)
}

func planPrompt(task string) string {
	return fmt.Sprintf(`Break the following task into a short sequence of concrete steps.

Task:
%s

Reply with a numbered list, one step per line, in the form:
1. First step
2. Second step`, task)
}

func stepPrompt(task string, step int, description string, prior []StepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall task:\n%s\n\n", task)
	if len(prior) > 0 {
		b.WriteString("Results of previous steps:\n")
		writeResults(&b, prior)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Execute step %d: %s\n\nReport the result of this step.", step, description)
	return b.String()
}

func replanPrompt(task string, done []StepResult, remaining []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall task:\n%s\n\nCompleted steps:\n", task)
	writeResults(&b, done)
	b.WriteString("\nThe last step may have failed. Steps that were still planned:\n")
	if len(remaining) == 0 {
		b.WriteString("(none)\n")
	}
	for i, s := range remaining {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nReply with a revised numbered list of the remaining steps, one per line.")
	return b.String()
}

func synthesizePrompt(task string, results []StepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall task:\n%s\n\nStep results:\n", task)
	writeResults(&b, results)
	b.WriteString("\nCombine these results into a final answer to the task.")
	return b.String()
}

func writeResults(b *strings.Builder, results []StepResult) {
	for _, r := range results {
		fmt.Fprintf(b, "%d. %s\n   Result: %s\n", r.Step, r.Description, r.Result)
	}
}
