package extract

import (
	"context"
)

// Engine applies a fixed set of rules to document text.
type Engine struct {
	rules []Rule
}

// NewEngine returns an Engine that evaluates rules in order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Fields returns every field the engine resolves, in rule order.
func (e *Engine) Fields() []Field {
	var out []Field
	for _, r := range e.rules {
		out = append(out, r.Fields...)
	}
	return out
}

// Result holds the fields resolved from one document.
type Result struct {
	Fields map[Field]Value
	// Err is the read error when every field is ParseError.
	Err error
}

// Get returns the value of f. Fields the engine does not know are NotFound.
func (r Result) Get(f Field) Value {
	if v, ok := r.Fields[f]; ok {
		return v
	}
	return Value{State: NotFound}
}

// Extract resolves every field from text. It never fails.
func (e *Engine) Extract(text string) Result {
	out := make(map[Field]Value, len(e.rules))
	for _, r := range e.rules {
		r.apply(text, out)
	}
	return Result{Fields: out}
}

// ExtractFile reads path with src and resolves every field. If the
// document cannot be read every field is ParseError.
func (e *Engine) ExtractFile(ctx context.Context, src TextSource, path string) Result {
	text, err := src.ExtractText(ctx, path)
	if err != nil {
		out := make(map[Field]Value)
		for _, f := range e.Fields() {
			out[f] = Value{State: ParseError}
		}
		return Result{Fields: out, Err: err}
	}
	return e.Extract(text)
}
