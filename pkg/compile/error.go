// Package compile defines the single error type used across every phase of
// LICE.
package compile

import "fmt"

// Error reports a single-line compile failure tagged with the phase that
// raised it. Every lexical, syntactic, semantic and internal-invariant
// failure is reported through this one type;
// none get special-cased propagation.
type Error struct {
	Phase   string // "lex", "parse", "sema", "codegen", "ice"
	Message string
}

func (e *Error) Error() string {
	if e.Phase == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Phase, e.Message)
}

// Errorf builds an *Error for the given phase.
func Errorf(phase, format string, args ...interface{}) *Error {
	return &Error{Phase: phase, Message: fmt.Sprintf(format, args...)}
}

// ICE reports an internal invariant violation: a code path that pkg/parser
// or pkg/codegen believes is unreachable.
func ICE(format string, args ...interface{}) *Error {
	return Errorf("ice", "internal compiler error: "+format, args...)
}
