package ast

import (
	"fmt"

	"github.com/dorktype/lice/pkg/types"
)

// Scope is a generic parent-chained associative table. It backs the five
// named symbol tables (global/local environments, struct and union tag
// tables, plus the typedef table) — all five share the identical "name ->
// value, chase the parent on miss" shape, so one generic type covers them
// (grounded on the reference repo's preference for small generic
// containers, pkg/utils/stack.go's Stack[T]).
type Scope[V any] struct {
	entries map[string]V
	parent  *Scope[V]
}

// NewScope creates a scope chained to parent (nil for a root/global scope).
func NewScope[V any](parent *Scope[V]) *Scope[V] {
	return &Scope[V]{entries: make(map[string]V), parent: parent}
}

// Declare adds name to this scope (shadowing any outer declaration).
func (s *Scope[V]) Declare(name string, v V) { s.entries[name] = v }

// Lookup searches this scope and its parent chain.
func (s *Scope[V]) Lookup(name string) (V, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.entries[name]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// LookupLocal searches only this scope, not its parents; used to detect
// redefinition within the same scope.
func (s *Scope[V]) LookupLocal(name string) (V, bool) {
	v, ok := s.entries[name]
	return v, ok
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope[V]) Parent() *Scope[V] { return s.parent }

// Tables bundles every symbol table the parser maintains and the code
// generator later reads.
type Tables struct {
	Globals *Scope[Node] // never popped

	Locals *Scope[Node] // replaced with a fresh child at each function/compound scope

	StructTags *Scope[*types.Type]
	UnionTags  *Scope[*types.Type]
	Typedefs   *Scope[*types.Type]

	Labels map[string]string // label name -> the same name (pkg/codegen derives the emitted label); reset per function

	Strings []*Str
	Floats  []*FloatLiteral
	Gotos   []*Goto

	labelCounter int
}

// NewTables constructs the root symbol tables for a translation unit.
func NewTables() *Tables {
	return &Tables{
		Globals:    NewScope[Node](nil),
		Locals:     nil, // no function is being parsed yet
		StructTags: NewScope[*types.Type](nil),
		UnionTags:  NewScope[*types.Type](nil),
		Typedefs:   NewScope[*types.Type](nil),
		Labels:     map[string]string{},
	}
}

// PushLocalScope starts a new nested local/typedef/tag scope (function
// entry or compound statement entry).
func (t *Tables) PushLocalScope() {
	t.Locals = NewScope[Node](t.Locals)
	t.StructTags = NewScope[*types.Type](t.StructTags)
	t.UnionTags = NewScope[*types.Type](t.UnionTags)
	t.Typedefs = NewScope[*types.Type](t.Typedefs)
}

// PopLocalScope restores the enclosing scope.
func (t *Tables) PopLocalScope() {
	if p := t.Locals.Parent(); p != nil {
		t.Locals = p
	} else {
		t.Locals = nil
	}
	if p := t.StructTags.Parent(); p != nil {
		t.StructTags = p
	}
	if p := t.UnionTags.Parent(); p != nil {
		t.UnionTags = p
	}
	if p := t.Typedefs.Parent(); p != nil {
		t.Typedefs = p
	}
}

// ResetFunction clears the per-function label/goto tables and local scope,
// called at the start of each function definition.
func (t *Tables) ResetFunction() {
	t.Labels = map[string]string{}
	t.Gotos = nil
	t.PushLocalScope()
}

// LookupVariable resolves a name against locals first, then globals.
func (t *Tables) LookupVariable(name string) (Node, bool) {
	if t.Locals != nil {
		if v, ok := t.Locals.Lookup(name); ok {
			return v, true
		}
	}
	return t.Globals.Lookup(name)
}

// NewLabel allocates a fresh unique ".L<n>" label.
func (t *Tables) NewLabel() string {
	label := fmt.Sprintf(".L%d", t.labelCounter)
	t.labelCounter++
	return label
}
