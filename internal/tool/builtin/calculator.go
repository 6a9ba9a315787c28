package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/flemzord/sloop/internal/tool"
)

// Calculator performs basic arithmetic on two operands.
type Calculator struct{}

// NewCalculator creates the calculator tool.
func NewCalculator() *Calculator { return &Calculator{} }

// Name implements tool.Tool.
func (c *Calculator) Name() string { return "calculator" }

// Description implements tool.Tool.
func (c *Calculator) Description() string {
	return "Perform basic arithmetic (add, subtract, multiply, divide, power) on two numbers."
}

// Schema implements tool.Tool.
func (c *Calculator) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"operation": {"type": "string", "enum": ["add", "subtract", "multiply", "divide", "power"]},
			"a": {"type": "number", "description": "Left operand."},
			"b": {"type": "number", "description": "Right operand."}
		},
		"required": ["operation", "a", "b"]
	}`)
}

type calculatorArgs struct {
	Operation string   `json:"operation"`
	A         *float64 `json:"a"`
	B         *float64 `json:"b"`
}

// Execute implements tool.Tool.
func (c *Calculator) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var a calculatorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("%w: %v", tool.ErrInvalidArguments, err)
	}
	if a.A == nil || a.B == nil {
		return "", fmt.Errorf("%w: operands a and b are required", tool.ErrInvalidArguments)
	}

	x, y := *a.A, *a.B
	var v float64
	switch a.Operation {
	case "add":
		v = x + y
	case "subtract":
		v = x - y
	case "multiply":
		v = x * y
	case "divide":
		if y == 0 {
			return "", fmt.Errorf("division by zero")
		}
		v = x / y
	case "power":
		v = math.Pow(x, y)
	default:
		return "", fmt.Errorf("%w: unknown operation %q", tool.ErrInvalidArguments, a.Operation)
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("result is not a finite number")
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// Interface guard.
var _ tool.Tool = (*Calculator)(nil)
