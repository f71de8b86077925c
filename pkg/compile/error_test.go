package compile_test

import (
	"errors"
	"testing"

	"github.com/dorktype/lice/pkg/compile"
)

func TestErrorfFormatsPhaseAndMessage(t *testing.T) {
	err := compile.Errorf("parse", "unexpected token %q", "}")
	if err.Phase != "parse" {
		t.Errorf("Phase = %q, want %q", err.Phase, "parse")
	}
	want := `parse: unexpected token "}"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithoutPhaseOmitsPrefix(t *testing.T) {
	err := &compile.Error{Message: "bare message"}
	if err.Error() != "bare message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "bare message")
	}
}

func TestICEIsTaggedAndPrefixed(t *testing.T) {
	err := compile.ICE("unreachable switch case %d", 7)
	if err.Phase != "ice" {
		t.Errorf("Phase = %q, want %q", err.Phase, "ice")
	}
	if got := err.Error(); got != "ice: internal compiler error: unreachable switch case 7" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorSatisfiesErrorInterface(t *testing.T) {
	var err error = compile.Errorf("lex", "bad input")
	var ce *compile.Error
	if !errors.As(err, &ce) {
		t.Fatal("compile.Errorf result should be recoverable via errors.As")
	}
	if ce.Phase != "lex" {
		t.Errorf("Phase = %q, want %q", ce.Phase, "lex")
	}
}
