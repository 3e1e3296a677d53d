package text

import "testing"

func TestLineIndexLineExcludesTerminators(t *testing.T) {
	t.Parallel()

	idx := NewLineIndex([]byte("alpha\r\nbeta\n\ngamma"))

	want := []string{"alpha", "beta", "", "gamma"}
	if got := idx.LineCount(); got != len(want) {
		t.Fatalf("LineCount() = %d, want %d", got, len(want))
	}
	for i, w := range want {
		got, err := idx.Line(i)
		if err != nil {
			t.Fatalf("Line(%d) error = %v", i, err)
		}
		if string(got) != w {
			t.Fatalf("Line(%d) = %q, want %q", i, got, w)
		}
	}

	if _, err := idx.Line(4); err == nil {
		t.Fatal("expected error for out-of-range line")
	}
	if _, err := idx.Line(-1); err == nil {
		t.Fatal("expected error for negative line")
	}
}

func TestLineIndexTrailingNewline(t *testing.T) {
	t.Parallel()

	idx := NewLineIndex([]byte("a\r\n"))
	if got := idx.LineCount(); got != 2 {
		t.Fatalf("LineCount() = %d, want 2", got)
	}
	last, err := idx.Line(1)
	if err != nil {
		t.Fatalf("Line(1) error = %v", err)
	}
	if len(last) != 0 {
		t.Fatalf("Line(1) = %q, want empty", last)
	}
}

func TestLineIndexNil(t *testing.T) {
	t.Parallel()

	var idx *LineIndex
	if idx.LineCount() != 0 {
		t.Fatal("nil LineIndex should report zero lines")
	}
	if _, err := idx.Line(0); err == nil {
		t.Fatal("expected error from nil LineIndex")
	}
}
