// Package middleware provides the request pipeline shared by the API and
// signing page modules: recovery, request logging, and CORS.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler with cross-cutting behavior.
type Func = func(http.Handler) http.Handler

// Stack is an ordered middleware pipeline. The first Func added is the
// outermost wrapper, so it sees the request first and the response last.
type Stack struct {
	funcs []Func
}

// New creates a Stack holding funcs in order.
func New(funcs ...Func) *Stack {
	return &Stack{funcs: funcs}
}

// Use appends fn to the end of the pipeline.
func (s *Stack) Use(fn Func) {
	s.funcs = append(s.funcs, fn)
}

// Len reports how many middleware are registered.
func (s *Stack) Len() int {
	return len(s.funcs)
}

// Apply wraps handler with every registered Func.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(s.funcs) {
		handler = fn(handler)
	}
	return handler
}

