package token_test

import (
	"testing"

	"github.com/dorktype/lice/pkg/token"
)

func TestTokenString(t *testing.T) {
	test := func(tok token.Token, expected string) {
		if s := tok.String(); s != expected {
			t.Errorf("String() = %q, want %q", s, expected)
		}
	}

	t.Run("identifiers and numbers", func(t *testing.T) {
		test(token.Token{Kind: token.IDENTIFIER, Text: "foo"}, "foo")
		test(token.Token{Kind: token.NUMBER, Text: "0x2A"}, "0x2A")
	})

	t.Run("strings and chars", func(t *testing.T) {
		test(token.Token{Kind: token.STRING, Text: "hi"}, `"hi"`)
		test(token.Token{Kind: token.CHAR, Int: int('a')}, "'a'")
	})

	t.Run("ASCII punctuators", func(t *testing.T) {
		test(token.Token{Kind: token.PUNCT, Int: int('+')}, "+")
		test(token.Token{Kind: token.PUNCT, Int: int('{')}, "{")
	})

	t.Run("reclassified punctuators", func(t *testing.T) {
		test(token.Token{Kind: token.EQUAL}, "==")
		test(token.Token{Kind: token.ARROW}, "->")
		test(token.Token{Kind: token.COMPOUND_LSHIFT}, "<<=")
		test(token.Token{Kind: token.ELLIPSIS}, "...")
	})
}

func TestTokenIs(t *testing.T) {
	tok := token.Token{Kind: token.PUNCT, Int: int('(')}
	if !tok.Is(int('(')) {
		t.Error("Is('(') = false, want true")
	}
	if tok.Is(int(')')) {
		t.Error("Is(')') = true, want false")
	}
	if (token.Token{Kind: token.IDENTIFIER, Text: "("}).Is(int('(')) {
		t.Error("an IDENTIFIER token must never satisfy Is, regardless of Text")
	}
}

func TestTokenIsKeyword(t *testing.T) {
	tok := token.Token{Kind: token.IDENTIFIER, Text: "return"}
	if !tok.IsKeyword("return") {
		t.Error("IsKeyword(\"return\") = false, want true")
	}
	if tok.IsKeyword("int") {
		t.Error("IsKeyword(\"int\") = true, want false")
	}
	if (token.Token{Kind: token.STRING, Text: "return"}).IsKeyword("return") {
		t.Error("a STRING token must never be seen as a keyword")
	}
}

func TestReclassifiedKindsDoNotCollideWithASCII(t *testing.T) {
	// Reclassified kinds must start past any printable ASCII punctuator so a
	// PUNCT token's Int and a non-PUNCT token's Kind can never be confused.
	if token.EQUAL < 0x200 {
		t.Fatalf("token.EQUAL = %#x, want >= 0x200", token.EQUAL)
	}
}
