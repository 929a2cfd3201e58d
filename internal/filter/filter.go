// Package filter keeps the rows of a table that satisfy a boolean
// expression. Expressions use the expr language; every column is a variable
// named after the column, and names that are not identifiers are reachable
// as $env["Annual Income (k$)"].
package filter

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/KaramelBytes/edaloom/internal/table"
)

// ErrInvalidExpression is returned when an expression does not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// EvalError reports the first row an expression failed on.
type EvalError struct {
	Expression string
	Row        int
	Err        error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("filter %q failed at row %d: %v", e.Expression, e.Row, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Filter is a compiled row predicate.
type Filter struct {
	expression string
	program    *vm.Program
}

// Compile checks expression once so it can be run against every row.
func Compile(expression string) (*Filter, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expression }

// Apply returns the rows of t for which the expression is true. Missing
// cells are nil; comparing nil with a number is an evaluation error, so
// filters normally run after missing values are handled.
func (f *Filter) Apply(t *table.Table) (*table.Table, error) {
	var evalErr error
	out := t.Filter(func(r int) bool {
		if evalErr != nil {
			return false
		}
		res, err := expr.Run(f.program, record(t, r))
		if err != nil {
			evalErr = &EvalError{Expression: f.expression, Row: r, Err: err}
			return false
		}
		keep, _ := res.(bool)
		return keep
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}

func record(t *table.Table, r int) map[string]any {
	env := make(map[string]any, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		c := t.Col(i)
		v := c.At(r)
		switch {
		case v.IsMissing():
			env[c.Name()] = nil
		case c.Kind() == table.Boolean:
			env[c.Name()] = v.Truth()
		case c.Kind() == table.Numeric:
			x, _ := v.Float()
			env[c.Name()] = x
		default:
			env[c.Name()] = v.Text()
		}
	}
	return env
}
