// Package main runs reproducible decode/print latency and memory stability measurements for Doc Weaver.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/kpumuk/doc-weaver/internal/doc"
	"github.com/kpumuk/doc-weaver/internal/docyaml"
	"github.com/kpumuk/doc-weaver/internal/printer"
)

const (
	setFixtures = "fixtures"
	setWide     = "wide"
	setNested   = "nested"
	setCalls    = "calls"
)

type config struct {
	iterations      int
	warmup          int
	maxWidth        int
	depth           int
	jsonPath        string
	memIters        int
	memSampleEvery  int
	memFreeOSMemory bool
}

type corpusDoc struct {
	Name  string `json:"name"`
	Set   string `json:"set"`
	Bytes int    `json:"bytes,omitempty"`
	src   []byte
	doc   doc.Doc
}

type sampleStats struct {
	Samples int     `json:"samples"`
	P50MS   float64 `json:"p50_ms"`
	P95MS   float64 `json:"p95_ms"`
	MinMS   float64 `json:"min_ms"`
	MaxMS   float64 `json:"max_ms"`
	MeanMS  float64 `json:"mean_ms"`
}

type benchSetReport struct {
	Set        string      `json:"set"`
	Docs       int         `json:"docs"`
	Iterations int         `json:"iterations"`
	Samples    int         `json:"samples"`
	Stats      sampleStats `json:"stats"`
}

type memSample struct {
	Iteration int    `json:"iteration"`
	HeapAlloc uint64 `json:"heap_alloc"`
	HeapInuse uint64 `json:"heap_inuse"`
	HeapSys   uint64 `json:"heap_sys"`
	NumGC     uint32 `json:"num_gc"`
}

type memoryReport struct {
	Iterations          int         `json:"iterations"`
	SampleEvery         int         `json:"sample_every"`
	DocCount            int         `json:"doc_count"`
	Samples             []memSample `json:"samples"`
	HeapAllocGrowth     int64       `json:"heap_alloc_growth"`
	HeapInuseGrowth     int64       `json:"heap_inuse_growth"`
	UnboundedGrowthHint bool        `json:"unbounded_growth_hint"`
}

type report struct {
	GeneratedAt  time.Time        `json:"generated_at"`
	GoVersion    string           `json:"go_version"`
	GOOS         string           `json:"goos"`
	GOARCH       string           `json:"goarch"`
	CPUs         int              `json:"cpus"`
	Config       map[string]any   `json:"config"`
	CorpusCounts map[string]int   `json:"corpus_counts"`
	DecodeBench  []benchSetReport `json:"decode_bench"`
	PrintBench   []benchSetReport `json:"print_bench"`
	Memory       memoryReport     `json:"memory"`
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "perf-report: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() config {
	var cfg config
	flag.IntVar(&cfg.iterations, "iterations", 15, "benchmark iterations per document")
	flag.IntVar(&cfg.warmup, "warmup", 2, "warmup iterations per document")
	flag.IntVar(&cfg.maxWidth, "max-width", 80, "printer line width")
	flag.IntVar(&cfg.depth, "depth", 500, "nesting depth of the synthetic nested document")
	flag.StringVar(&cfg.jsonPath, "json", "", "optional JSON report output path")
	flag.IntVar(&cfg.memIters, "memory-iterations", 300, "print loop iterations")
	flag.IntVar(&cfg.memSampleEvery, "memory-sample-every", 25, "memory sample cadence")
	flag.BoolVar(&cfg.memFreeOSMemory, "memory-free-os", false, "call debug.FreeOSMemory before memory samples (slower, less noisy)")
	flag.Parse()
	return cfg
}

func run(cfg config) error {
	if cfg.iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if cfg.warmup < 0 {
		return errors.New("warmup must be >= 0")
	}
	if cfg.depth <= 0 {
		return errors.New("depth must be > 0")
	}
	if cfg.memIters <= 0 {
		return errors.New("memory-iterations must be > 0")
	}
	if cfg.memSampleEvery <= 0 {
		return errors.New("memory-sample-every must be > 0")
	}

	corpus, err := buildCorpus(cfg)
	if err != nil {
		return err
	}
	opts := printer.DefaultOptions()
	opts.MaxWidth = cfg.maxWidth

	decodeBench, err := runDecodeBench(corpus, cfg)
	if err != nil {
		return err
	}
	printBench, err := runPrintBench(corpus, opts, cfg)
	if err != nil {
		return err
	}
	memBench, err := runMemoryLoop(corpus, opts, cfg)
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for set, docs := range corpus {
		counts[set] = len(docs)
	}
	rep := report{
		GeneratedAt:  time.Now().UTC(),
		GoVersion:    runtime.Version(),
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
		CPUs:         runtime.NumCPU(),
		Config:       configJSON(cfg),
		CorpusCounts: counts,
		DecodeBench:  decodeBench,
		PrintBench:   printBench,
		Memory:       memBench,
	}

	printReport(rep)
	if cfg.jsonPath != "" {
		if err := writeJSON(cfg.jsonPath, rep); err != nil {
			return err
		}
		fmt.Printf("\nJSON report written to %s\n", cfg.jsonPath)
	}
	return nil
}

func buildCorpus(cfg config) (map[string][]corpusDoc, error) {
	repoRoot, err := findRepoRoot()
	if err != nil {
		return nil, err
	}

	corpus := make(map[string][]corpusDoc)
	for _, dir := range []string{
		filepath.Join(repoRoot, "testdata", "render", "input"),
		filepath.Join(repoRoot, "testdata", "corpus", "valid"),
	} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !slices.Contains([]string{".yaml", ".yml", ".json"}, filepath.Ext(e.Name())) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			f, err := docyaml.Decode(src)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
			corpus[setFixtures] = append(corpus[setFixtures], corpusDoc{
				Name: e.Name(), Set: setFixtures, Bytes: len(src), src: src, doc: f.Doc,
			})
		}
	}

	for _, d := range []corpusDoc{
		{Name: "paragraph", Set: setWide, doc: paragraph(5000)},
		{Name: "deep-indent", Set: setNested, doc: nested(cfg.depth)},
		{Name: "call-tree", Set: setCalls, doc: callTree(6, 4)},
	} {
		src, err := docyaml.Encode(d.doc)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", d.Name, err)
		}
		d.src, d.Bytes = src, len(src)
		corpus[d.Set] = append(corpus[d.Set], d)
	}
	return corpus, nil
}

func paragraph(words int) doc.Doc {
	parts := make([]doc.Doc, 0, 2*words)
	for i := range words {
		if i > 0 {
			parts = append(parts, doc.Line())
		}
		parts = append(parts, doc.Text(strings.Repeat("w", 1+i%9)))
	}
	return doc.Fill(parts...)
}

func nested(depth int) doc.Doc {
	d := doc.Text("leaf")
	for range depth {
		d = doc.Group(doc.Indent(doc.Concat(doc.SoftLine(), doc.Text("a"), d)))
	}
	return d
}

func callTree(depth, fanout int) doc.Doc {
	if depth == 0 {
		return doc.Text("value")
	}
	args := make([]doc.Doc, fanout)
	for i := range args {
		args[i] = callTree(depth-1, fanout)
	}
	return doc.Group(doc.Concat(
		doc.Text("call("),
		doc.Indent(doc.Concat(doc.SoftLine(), doc.Join(doc.Concat(doc.Text(","), doc.Line()), args...))),
		doc.IfBreak(doc.Text(","), doc.Empty()),
		doc.SoftLine(),
		doc.Text(")"),
	))
}

func orderedSets() []string {
	return []string{setFixtures, setWide, setNested, setCalls}
}

func runDecodeBench(corpus map[string][]corpusDoc, cfg config) ([]benchSetReport, error) {
	out := make([]benchSetReport, 0, len(corpus))
	for _, set := range orderedSets() {
		docs := corpus[set]
		samples, err := measure(docs, cfg, func(d corpusDoc) error {
			_, err := docyaml.Decode(d.src)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("decode bench %s: %w", set, err)
		}
		out = append(out, benchSetReport{Set: set, Docs: len(docs), Iterations: cfg.iterations, Samples: len(samples), Stats: durationStats(samples)})
	}
	return out, nil
}

func runPrintBench(corpus map[string][]corpusDoc, opts printer.Options, cfg config) ([]benchSetReport, error) {
	out := make([]benchSetReport, 0, len(corpus))
	for _, set := range orderedSets() {
		docs := corpus[set]
		samples, err := measure(docs, cfg, func(d corpusDoc) error {
			_, err := printer.Print(d.doc, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("print bench %s: %w", set, err)
		}
		out = append(out, benchSetReport{Set: set, Docs: len(docs), Iterations: cfg.iterations, Samples: len(samples), Stats: durationStats(samples)})
	}
	return out, nil
}

func measure(docs []corpusDoc, cfg config, fn func(corpusDoc) error) ([]time.Duration, error) {
	var samples []time.Duration
	for _, d := range docs {
		for range cfg.warmup {
			if err := fn(d); err != nil {
				return nil, fmt.Errorf("warmup %s: %w", d.Name, err)
			}
		}
		for range cfg.iterations {
			start := time.Now()
			if err := fn(d); err != nil {
				return nil, fmt.Errorf("%s: %w", d.Name, err)
			}
			samples = append(samples, time.Since(start))
		}
	}
	return samples, nil
}

func runMemoryLoop(corpus map[string][]corpusDoc, opts printer.Options, cfg config) (memoryReport, error) {
	var docs []corpusDoc
	for _, set := range orderedSets() {
		docs = append(docs, corpus[set]...)
	}
	rep := memoryReport{Iterations: cfg.memIters, SampleEvery: cfg.memSampleEvery, DocCount: len(docs)}

	sample := func(iter int) {
		runtime.GC()
		if cfg.memFreeOSMemory {
			debug.FreeOSMemory()
		}
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		rep.Samples = append(rep.Samples, memSample{
			Iteration: iter,
			HeapAlloc: ms.HeapAlloc,
			HeapInuse: ms.HeapInuse,
			HeapSys:   ms.HeapSys,
			NumGC:     ms.NumGC,
		})
	}

	sample(0)
	for i := 1; i <= cfg.memIters; i++ {
		d := docs[i%len(docs)]
		if _, err := printer.Print(d.doc, opts); err != nil {
			return memoryReport{}, fmt.Errorf("memory loop %s: %w", d.Name, err)
		}
		if i%cfg.memSampleEvery == 0 {
			sample(i)
		}
	}

	first, last := rep.Samples[0], rep.Samples[len(rep.Samples)-1]
	rep.HeapAllocGrowth = int64Diff(last.HeapAlloc, first.HeapAlloc)
	rep.HeapInuseGrowth = int64Diff(last.HeapInuse, first.HeapInuse)
	rep.UnboundedGrowthHint = isUnboundedGrowthHint(rep.Samples)
	return rep, nil
}

func isUnboundedGrowthHint(samples []memSample) bool {
	if len(samples) < 4 {
		return false
	}
	base := samples[0]
	last := samples[len(samples)-1]
	growthAlloc := int64Diff(last.HeapAlloc, base.HeapAlloc)
	growthInuse := int64Diff(last.HeapInuse, base.HeapInuse)
	const maxExpectedGrowth = 16 << 20 // 16 MiB heuristic after forced GC samples
	return growthAlloc > maxExpectedGrowth || growthInuse > maxExpectedGrowth
}

func durationStats(samples []time.Duration) sampleStats {
	if len(samples) == 0 {
		return sampleStats{}
	}
	ns := make([]int64, len(samples))
	var sum int64
	for i, d := range samples {
		ns[i] = d.Nanoseconds()
		sum += ns[i]
	}
	slices.Sort(ns)
	return sampleStats{
		Samples: len(samples),
		P50MS:   nanosToMS(quantile(ns, 0.50)),
		P95MS:   nanosToMS(quantile(ns, 0.95)),
		MinMS:   nanosToMS(ns[0]),
		MaxMS:   nanosToMS(ns[len(ns)-1]),
		MeanMS:  nanosToMS(sum / int64(len(ns))),
	}
}

func quantile(sorted []int64, q float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	return sorted[int(float64(len(sorted)-1)*q)]
}

func nanosToMS(ns int64) float64 {
	return float64(ns) / float64(time.Millisecond)
}

func printReport(rep report) {
	fmt.Printf("Doc Weaver Performance Report\n")
	fmt.Printf("Generated: %s\n", rep.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Go: %s | %s/%s | CPUs=%d\n", rep.GoVersion, rep.GOOS, rep.GOARCH, rep.CPUs)
	fmt.Println()
	fmt.Println("Document sets")
	for _, set := range orderedSets() {
		fmt.Printf("- %-9s docs=%3d\n", set, rep.CorpusCounts[set])
	}
	fmt.Println()
	printBenchTable("Decode YAML (warm)", rep.DecodeBench)
	fmt.Println()
	printBenchTable("Print document (warm, decoded)", rep.PrintBench)
	fmt.Println()
	printMemoryReport(rep.Memory)
}

func printBenchTable(title string, rows []benchSetReport) {
	fmt.Println(title)
	fmt.Println("set        docs samples  p50(ms)  p95(ms)  mean(ms)   min    max")
	for _, r := range rows {
		fmt.Printf("%-10s %4d %7d %8.2f %8.2f %8.2f %6.2f %6.2f\n",
			r.Set, r.Docs, r.Samples, r.Stats.P50MS, r.Stats.P95MS, r.Stats.MeanMS, r.Stats.MinMS, r.Stats.MaxMS)
	}
}

func printMemoryReport(rep memoryReport) {
	fmt.Println("Print memory loop")
	fmt.Printf("iterations=%d sample_every=%d docs=%d\n", rep.Iterations, rep.SampleEvery, rep.DocCount)
	if len(rep.Samples) == 0 {
		fmt.Println("no samples")
		return
	}
	last := rep.Samples[len(rep.Samples)-1]
	fmt.Printf("final heap_alloc=%d heap_inuse=%d heap_sys=%d num_gc=%d\n", last.HeapAlloc, last.HeapInuse, last.HeapSys, last.NumGC)
	fmt.Printf("growth heap_alloc=%d heap_inuse=%d unbounded_growth_hint=%v\n", rep.HeapAllocGrowth, rep.HeapInuseGrowth, rep.UnboundedGrowthHint)
}

func writeJSON(path string, rep report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o600)
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("repository root not found")
		}
		dir = parent
	}
}

func configJSON(cfg config) map[string]any {
	return map[string]any{
		"iterations":          cfg.iterations,
		"warmup":              cfg.warmup,
		"max_width":           cfg.maxWidth,
		"depth":               cfg.depth,
		"json":                cfg.jsonPath,
		"memory_iterations":   cfg.memIters,
		"memory_sample_every": cfg.memSampleEvery,
		"memory_free_os":      cfg.memFreeOSMemory,
	}
}

func int64Diff(a, b uint64) int64 {
	const maxInt64AsUint64 = (^uint64(0)) >> 1
	if a >= b {
		d := a - b
		if d > maxInt64AsUint64 {
			return int64(maxInt64AsUint64)
		}
		return int64(d)
	}
	d := b - a
	if d > maxInt64AsUint64 {
		return -int64(maxInt64AsUint64)
	}
	return -int64(d)
}
