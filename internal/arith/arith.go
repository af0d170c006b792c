// Package arith evaluates arithmetic written in mixed numeric and word form,
// e.g. "what is 7 times 8" or "10 divided by 4".
package arith

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrNotUnderstood  = errors.New("expression not understood")
)

// Operator is the operator family detected in the input.
type Operator int

const (
	OpMul Operator = iota
	OpAdd
	OpSub
	OpDiv
	// OpExpr marks a result produced by the expression grammar.
	OpExpr
)

func (o Operator) String() string {
	switch o {
	case OpMul:
		return "mul"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpDiv:
		return "div"
	case OpExpr:
		return "expr"
	default:
		return "unknown"
	}
}

// Expression is an operator applied to an ordered list of operands.
type Expression struct {
	Operator Operator
	Operands []float64
}

// Result is the reduced value of an Expression.
type Result struct {
	Operator Operator
	Value    float64
}

// String renders integral values without a decimal point, except for
// division which always keeps float notation.
func (r Result) String() string {
	if r.Operator == OpDiv {
		return formatFloat(r.Value)
	}
	if r.Value == math.Trunc(r.Value) && !math.IsInf(r.Value, 0) && math.Abs(r.Value) < 1e15 {
		return strconv.FormatFloat(r.Value, 'f', 0, 64)
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

type family struct {
	op       Operator
	symbol   string
	words    []string
	matchRe  *regexp.Regexp
	replacer *strings.Replacer
}

// Families are tried in this order.
var families = []family{
	{
		op:       OpMul,
		symbol:   "*",
		words:    []string{"times", "multiplied by", "multiply", "*", "×"},
		matchRe:  regexp.MustCompile(`(^|[\s\d])x($|[\s\d])`),
		replacer: strings.NewReplacer("multiplied by", "*", "multiply", "*", "times", "*", "×", "*", "x", "*", " ", ""),
	},
	{
		op:       OpAdd,
		symbol:   "+",
		words:    []string{"plus", "+", "add"},
		replacer: strings.NewReplacer("plus", "+", "add", "+", " ", ""),
	},
	{
		op:       OpSub,
		symbol:   "-",
		words:    []string{"minus", "-", "subtract"},
		replacer: strings.NewReplacer("minus", "-", "subtract", "-", " ", ""),
	},
	{
		op:       OpDiv,
		symbol:   "/",
		words:    []string{"divided by", "/", "÷", "divide"},
		replacer: strings.NewReplacer("divided by", "/", "÷", "/", "divide", "/", " ", ""),
	},
}

func (f family) matches(query string) bool {
	for _, w := range f.words {
		if strings.Contains(query, w) {
			return true
		}
	}
	return f.matchRe != nil && f.matchRe.MatchString(query)
}

var (
	numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	fillerWords   = strings.NewReplacer("what is", "", "what's", "", "whats", "", "calculate", "", "?", "")
)

// Clean lowercases the query and drops question filler.
func Clean(text string) string {
	return strings.TrimSpace(fillerWords.Replace(strings.ToLower(text)))
}

// ExtractNumbers returns every signed decimal in text. A leading '-' counts
// as a sign only at the start of the text or after whitespace or an operator.
func ExtractNumbers(text string) []float64 {
	var out []float64
	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		lit := text[loc[0]:loc[1]]
		if lit[0] == '-' && loc[0] > 0 && !isSignPrefix(text[loc[0]-1]) {
			lit = lit[1:]
		}
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isSignPrefix(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '(', '+', '*', '/', '=':
		return true
	}
	return false
}

// Detect returns the first operator family present in text and its operands.
func Detect(text string) (Expression, bool) {
	query := Clean(text)
	for _, f := range families {
		if !f.matches(query) {
			continue
		}
		if nums := ExtractNumbers(query); len(nums) >= 2 {
			return Expression{Operator: f.op, Operands: nums}, true
		}
		if nums, ok := splitPair(f, query); ok {
			return Expression{Operator: f.op, Operands: nums}, true
		}
	}
	return Expression{}, false
}

// splitPair replaces operator words with the family symbol and parses
// the first two operands either side of it.
func splitPair(f family, query string) ([]float64, bool) {
	compact := f.replacer.Replace(query)
	negative := false
	if f.op == OpSub && strings.HasPrefix(compact, "-") {
		negative = true
		compact = compact[1:]
	}
	parts := strings.Split(compact, f.symbol)
	if len(parts) < 2 {
		return nil, false
	}
	a, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, false
	}
	b, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, false
	}
	if negative {
		a = -a
	}
	return []float64{a, b}, true
}

// Reduce folds the operands with the expression's operator.
// Division only uses the first two operands.
func (e Expression) Reduce() (Result, error) {
	if len(e.Operands) < 2 {
		return Result{}, fmt.Errorf("%s needs two operands: %w", e.Operator, ErrNotUnderstood)
	}
	res := Result{Operator: e.Operator}
	switch e.Operator {
	case OpMul:
		res.Value = 1
		for _, n := range e.Operands {
			res.Value *= n
		}
	case OpAdd:
		for _, n := range e.Operands {
			res.Value += n
		}
	case OpSub:
		res.Value = e.Operands[0]
		for _, n := range e.Operands[1:] {
			res.Value -= n
		}
	case OpDiv:
		if e.Operands[1] == 0 {
			return Result{}, ErrDivisionByZero
		}
		res.Value = e.Operands[0] / e.Operands[1]
	default:
		return Result{}, fmt.Errorf("unsupported operator %s: %w", e.Operator, ErrNotUnderstood)
	}
	return res, nil
}

var exprReplacer = strings.NewReplacer(" ", "", "x", "*", "×", "*", "÷", "/")

// Evaluate runs operator detection first and falls back to the expression
// grammar. It returns ErrDivisionByZero or ErrNotUnderstood on failure.
func Evaluate(text string) (Result, error) {
	if expr, ok := Detect(text); ok {
		return expr.Reduce()
	}

	v, err := EvalExpression(exprReplacer.Replace(Clean(text)))
	if err != nil {
		return Result{}, err
	}
	return Result{Operator: OpExpr, Value: v}, nil
}
