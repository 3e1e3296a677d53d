package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRejectsInvalidArgs(t *testing.T) {
	t.Parallel()

	var out, err bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &out, &err, []string{"--stdin", "doc.yaml"}, nil)
	if code != exitInternal {
		t.Fatalf("exit code = %d, want %d", code, exitInternal)
	}
	if !strings.Contains(err.String(), "positional file paths are not allowed with --stdin") {
		t.Fatalf("stderr missing validation message: %q", err.String())
	}

	err.Reset()
	code = run(context.Background(), strings.NewReader(""), &out, &err, []string{"--format", "xml", "doc.yaml"}, nil)
	if code != exitInternal || !strings.Contains(err.String(), "--format must be one of") {
		t.Fatalf("code %d stderr %q", code, err.String())
	}
}

func TestRunNoDiagnosticsExitOK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "valid.yaml")
	if err := os.WriteFile(path, []byte("group: [a, {line: line}, b]\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out, errb bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &out, &errb, []string{path}, nil)
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d; stderr=%q", code, exitOK, errb.String())
	}
	if out.Len() != 0 || errb.Len() != 0 {
		t.Fatalf("expected no output for clean file; stdout=%q stderr=%q", out.String(), errb.String())
	}
}

func TestRunIssuesExitAndTextDiagnostics(t *testing.T) {
	t.Parallel()

	var out, errb bytes.Buffer
	src := "- dedent: x\n- {text: \"a\\nb\", span: [2, 5]}\n"
	code := run(context.Background(), strings.NewReader(src), &out, &errb, []string{"--stdin", "--assume-filename", "in.yaml"}, nil)
	if code != exitIssues {
		t.Fatalf("exit code = %d, want %d", code, exitIssues)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected stdout for text diagnostics: %q", out.String())
	}
	stderr := errb.String()
	if !strings.Contains(stderr, "in.yaml:concat[0].dedent: E: negative-indent:") {
		t.Fatalf("missing negative-indent diagnostic in stderr: %q", stderr)
	}
	if !strings.Contains(stderr, "in.yaml:concat[1].text@[2,5): W: text-newline:") {
		t.Fatalf("missing text-newline diagnostic in stderr: %q", stderr)
	}
}

func TestRunMaxWidthFlag(t *testing.T) {
	t.Parallel()

	var out, errb bytes.Buffer
	code := run(context.Background(), strings.NewReader("abcdef\n"), &out, &errb, []string{"--stdin", "--max-width", "3"}, nil)
	if code != exitIssues || !strings.Contains(errb.String(), "overlong-text") {
		t.Fatalf("code %d stderr %q", code, errb.String())
	}

	errb.Reset()
	code = run(context.Background(), strings.NewReader("abcdef\n"), &out, &errb, []string{"--stdin"}, []string{"DOCWEAVER_MAX_WIDTH=3"})
	if code != exitIssues {
		t.Fatalf("env width: code %d, want %d", code, exitIssues)
	}
}

func TestRunJSONDiagnostics(t *testing.T) {
	t.Parallel()

	var out, errb bytes.Buffer
	src := "- {ifBreak: {break: x, group: g}}\n- {text: y, span: [0, 1]}\n"
	code := run(context.Background(), strings.NewReader(src), &out, &errb, []string{"--stdin", "--format", "json"}, nil)
	if code != exitIssues {
		t.Fatalf("exit code = %d, want %d", code, exitIssues)
	}
	if errb.Len() != 0 {
		t.Fatalf("expected empty stderr for json mode, got %q", errb.String())
	}

	var payload []diagnosticJSON
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("json.Unmarshal: %v; payload=%q", err, out.String())
	}
	if len(payload) != 1 {
		t.Fatalf("payload = %+v, want one diagnostic", payload)
	}
	got := payload[0]
	if got.Code != "unknown-group-ref" || got.Severity != "error" || got.File != "stdin.yaml" || got.Path != "concat[0].ifBreak" {
		t.Fatalf("unexpected diagnostic payload: %+v", got)
	}
	if got.SpanStart != nil {
		t.Fatalf("SpanStart = %d, want none", *got.SpanStart)
	}
}
