package printer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

func TestPrintAllKeepsJobOrder(t *testing.T) {
	t.Parallel()

	var jobs []Job
	for i := range 64 {
		d := callDoc(fmt.Sprintf("f%d", i), doc.Text("alpha"), doc.Text("beta"))
		jobs = append(jobs, Job{Name: fmt.Sprintf("job-%d", i), Doc: d, Options: rawOptions(5 + i%20)})
	}

	results, err := PrintAll(context.Background(), jobs, 4)
	if err != nil {
		t.Fatalf("PrintAll: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.Name != jobs[i].Name {
			t.Fatalf("results[%d].Name = %q, want %q", i, res.Name, jobs[i].Name)
		}
		if res.Err != nil {
			t.Fatalf("results[%d].Err = %v", i, res.Err)
		}
		want := mustPrint(t, jobs[i].Doc, jobs[i].Options)
		if res.Text != want {
			t.Fatalf("results[%d].Text = %q, want %q", i, res.Text, want)
		}
	}
}

func TestPrintAllReportsPerJobErrors(t *testing.T) {
	t.Parallel()

	jobs := []Job{
		{Name: "ok", Doc: doc.Text("a"), Options: rawOptions(80)},
		{Name: "bad", Doc: doc.IfGroupBreaks("nope", doc.Text("x"), doc.Text("y")), Options: rawOptions(80)},
		{Name: "also-ok", Doc: doc.Text("b"), Options: rawOptions(80)},
	}
	results, err := PrintAll(context.Background(), jobs, 0)
	if err != nil {
		t.Fatalf("PrintAll: %v", err)
	}
	if results[0].Text != "a" || results[2].Text != "b" {
		t.Fatalf("texts = %q, %q; want a, b", results[0].Text, results[2].Text)
	}
	if !IsErrInvariant(results[1].Err) {
		t.Fatalf("results[1].Err = %v, want invariant error", results[1].Err)
	}
}

func TestPrintAllCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PrintAll(ctx, []Job{{Name: "a", Doc: doc.Text("a"), Options: DefaultOptions()}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("PrintAll error = %v, want context.Canceled", err)
	}
}

func TestPrintAllSharesOneDocument(t *testing.T) {
	t.Parallel()

	shared := callDoc("shared", doc.Text("one"), doc.Text("two"), doc.Text("three"))
	jobs := make([]Job, 32)
	for i := range jobs {
		jobs[i] = Job{Name: "shared", Doc: shared, Options: rawOptions(10)}
	}
	results, err := PrintAll(context.Background(), jobs, 8)
	if err != nil {
		t.Fatalf("PrintAll: %v", err)
	}
	for i := range results {
		if results[i].Text != results[0].Text {
			t.Fatalf("results[%d].Text = %q, want %q", i, results[i].Text, results[0].Text)
		}
	}
}
