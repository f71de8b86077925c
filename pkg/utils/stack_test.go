package utils_test

import (
	"testing"

	"github.com/dorktype/lice/pkg/utils"
)

func TestStackPushPopOrder(t *testing.T) {
	var s utils.Stack[string]
	s.Push("outer")
	s.Push("inner")

	top, err := s.Top()
	if err != nil || top != "inner" {
		t.Fatalf("Top() = %q, %v, want %q, nil", top, err, "inner")
	}

	got, err := s.Pop()
	if err != nil || got != "inner" {
		t.Fatalf("Pop() = %q, %v, want %q, nil", got, err, "inner")
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}

	got, err = s.Pop()
	if err != nil || got != "outer" {
		t.Fatalf("Pop() = %q, %v, want %q, nil", got, err, "outer")
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", s.Count())
	}
}

func TestStackTopAndPopOnEmptyStackError(t *testing.T) {
	var s utils.Stack[int]
	if _, err := s.Top(); err == nil {
		t.Error("Top() on an empty stack should error, as codegen relies on this to detect break/continue/case outside their context")
	}
	if _, err := s.Pop(); err == nil {
		t.Error("Pop() on an empty stack should error")
	}
}

func TestStackNestingRestoresOuterFrame(t *testing.T) {
	// Mirrors pkg/codegen's break-label handling across a nested loop/switch.
	var s utils.Stack[string]
	s.Push("loop-end")
	s.Push("switch-end")
	s.Pop()
	top, err := s.Top()
	if err != nil || top != "loop-end" {
		t.Errorf("Top() after popping the inner frame = %q, %v, want %q, nil", top, err, "loop-end")
	}
}

func TestStackIterator(t *testing.T) {
	var s utils.Stack[int]
	s.Push(1)
	s.Push(2)
	s.Push(3)

	var seen []int
	s.Iterator()(func(v int) bool {
		seen = append(seen, v)
		return true
	})
	if len(seen) != 3 {
		t.Fatalf("Iterator() yielded %d values, want 3", len(seen))
	}
}
