package main

import (
	"io"
	"os"
	"strings"
	"testing"
)

// withStdin temporarily replaces os.Stdin with a pipe fed with src, runs fn,
// and restores the original os.Stdin afterwards.
func withStdin(t *testing.T, src string, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()

	go func() {
		_, _ = io.WriteString(w, src)
		w.Close()
	}()
	fn()
}

// captureStdout temporarily replaces os.Stdout with a pipe, runs fn, and
// returns everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	fn()
	w.Close()
	return <-done
}

func TestHandlerCompilesStdinToAssembly(t *testing.T) {
	src := `int add(int a, int b) { return a + b; }`
	var status int
	var out string
	withStdin(t, src, func() {
		out = captureStdout(t, func() {
			status = Handler(nil, map[string]string{})
		})
	})
	if status != 0 {
		t.Fatalf("Handler() status = %d, want 0", status)
	}
	if !strings.Contains(out, "add:") {
		t.Errorf("output missing the add function label:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("output missing a ret instruction:\n%s", out)
	}
}

func TestHandlerDumpAST(t *testing.T) {
	src := `int f() { return 1; }`
	var status int
	var out string
	withStdin(t, src, func() {
		out = captureStdout(t, func() {
			status = Handler(nil, map[string]string{"dump-ast": "true"})
		})
	})
	if status != 0 {
		t.Fatalf("Handler() status = %d, want 0", status)
	}
	if !strings.Contains(out, "(function f") {
		t.Errorf("dump-ast output missing the function node:\n%s", out)
	}
	if strings.Contains(out, ".text") {
		t.Error("dump-ast must not run code generation")
	}
}

func TestHandlerReportsParseErrorAndExitsNonzero(t *testing.T) {
	src := `int f( { return; }` // malformed parameter list
	var status int
	withStdin(t, src, func() {
		captureStdout(t, func() {
			status = Handler(nil, map[string]string{})
		})
	})
	if status == 0 {
		t.Error("Handler() should return a nonzero status for malformed input")
	}
}
