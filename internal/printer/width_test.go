package printer

import (
	"slices"
	"testing"
)

func TestStringWidth(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want int
	}{
		"empty":    {in: "", want: 0},
		"ascii":    {in: "hello", want: 5},
		"wide":     {in: "日本", want: 4},
		"emoji":    {in: "👍", want: 2},
		"tab":      {in: "\t", want: 4},
		"combined": {in: "a\té", want: 6},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := StringWidth(tc.in, 4); got != tc.want {
				t.Fatalf("StringWidth(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestOverflows(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.MaxWidth = 4
	got := Overflows("abc\nabcdef\n日本\r\n\tab\n", opts)
	want := []Overflow{{Line: 1, Width: 6}, {Line: 3, Width: 6}}
	if !slices.Equal(got, want) {
		t.Fatalf("Overflows() = %+v, want %+v", got, want)
	}
	if got := Overflows("", opts); len(got) != 0 {
		t.Fatalf("Overflows(empty) = %+v, want none", got)
	}
}
