package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"lingosort/internal/langdetect"
	"lingosort/internal/organizer"
	"lingosort/internal/scan"
	"lingosort/internal/services"
	"lingosort/internal/workqueue"
)

type fakeExtractor struct {
	fs afero.Fs
}

// Extract returns the file body; a body of "!fail" or "!panic" triggers the
// matching failure.
func (f fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return "", err
	}
	switch string(data) {
	case "!fail":
		return "", errors.New("corrupt document")
	case "!panic":
		panic("extractor blew up")
	}
	return string(data), nil
}

type keywordClassifier struct {
	calls atomic.Int64
}

func (k *keywordClassifier) Classify(_ context.Context, excerpt string) langdetect.Result {
	k.calls.Add(1)
	switch {
	case strings.Contains(excerpt, "shalom"):
		return langdetect.Result{Code: "he", Confidence: 0.99}
	case strings.Contains(excerpt, "hello"):
		return langdetect.Result{Code: "en", Confidence: 0.98}
	case strings.Contains(excerpt, "bonjour"):
		return langdetect.Result{Code: "fr", Confidence: 0.97}
	}
	return langdetect.Unrecognized
}

type countingObserver struct {
	mu      sync.Mutex
	records map[string]Record
	calls   int
}

func (c *countingObserver) Observe(_ context.Context, rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records == nil {
		c.records = make(map[string]Record)
	}
	c.records[rec.Path] = rec
	c.calls++
}

type fixture struct {
	fs         afero.Fs
	router     *organizer.Router
	classifier *keywordClassifier
	observer   *countingObserver
	queue      *workqueue.Queue[scan.FileTask]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	router, err := organizer.New(fs, organizer.Options{
		OutputDir: "/out",
		Languages: map[string]string{"he": "hebrew", "en": "english"},
	})
	if err != nil {
		t.Fatalf("organizer.New: %v", err)
	}
	return &fixture{
		fs:         fs,
		router:     router,
		classifier: &keywordClassifier{},
		observer:   &countingObserver{},
		queue:      workqueue.New[scan.FileTask](),
	}
}

func (f *fixture) add(t *testing.T, path, body string) {
	t.Helper()
	if err := afero.WriteFile(f.fs, path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := f.queue.Put(scan.FileTask{Path: path}); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func (f *fixture) pool(t *testing.T, size int) *Pool {
	t.Helper()
	p, err := NewPool(Stages{
		Extractor:  fakeExtractor{fs: f.fs},
		Classifier: f.classifier,
		Router:     f.router,
	}, PoolOptions{Size: size, Observer: f.observer, ProgressEvery: 10})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func TestPoolCompletesEveryTask(t *testing.T) {
	for _, size := range []int{2, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", size), func(t *testing.T) {
			f := newFixture(t)
			const n = 100
			for i := range n {
				body := "hello there general reader"
				if i%3 == 0 {
					body = "shalom shalom chaverim"
				}
				f.add(t, fmt.Sprintf("/in/doc-%03d.txt", i), body)
			}

			summary := f.pool(t, size).Run(context.Background(), f.queue)

			if summary.Total != n {
				t.Fatalf("total = %d, want %d", summary.Total, n)
			}
			if got := f.queue.Unfinished(); got != 0 {
				t.Fatalf("unfinished = %d", got)
			}
			if err := f.queue.TaskDone(); !errors.Is(err, workqueue.ErrTooManyDone) {
				t.Fatalf("extra TaskDone should underflow, got %v", err)
			}
			if f.observer.calls != n {
				t.Fatalf("observer saw %d records", f.observer.calls)
			}
			if summary.Count(OutcomeRouted) != n {
				t.Fatalf("routed = %d, outcomes %v", summary.Count(OutcomeRouted), summary.Outcomes)
			}
			if summary.Languages["he"] != 34 || summary.Languages["en"] != 66 {
				t.Fatalf("languages = %v", summary.Languages)
			}
			if got := f.classifier.calls.Load(); got != n {
				t.Fatalf("classifier calls = %d, want %d (no task processed twice)", got, n)
			}
		})
	}
}

func TestPoolIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	f.add(t, "/in/he.pdf", "shalom olam")
	f.add(t, "/in/en.docx", "hello world")
	f.add(t, "/in/bad.rtf", "!fail")
	f.add(t, "/in/boom.doc", "!panic")

	summary := f.pool(t, 2).Run(context.Background(), f.queue)

	want := map[string]Outcome{
		"/in/he.pdf":   OutcomeRouted,
		"/in/en.docx":  OutcomeRouted,
		"/in/bad.rtf":  OutcomeExtractionFailed,
		"/in/boom.doc": OutcomeFailed,
	}
	for path, outcome := range want {
		if got := f.observer.records[path].Outcome; got != outcome {
			t.Errorf("%s: outcome %q, want %q", path, got, outcome)
		}
	}
	if summary.Failures() != 2 {
		t.Fatalf("failures = %d", summary.Failures())
	}
	if !f.router.SourceExists(filepath.Join("/out", "hebrew", "he.pdf")) {
		t.Fatal("hebrew document not routed")
	}
	if !f.router.SourceExists(filepath.Join("/out", "english", "en.docx")) {
		t.Fatal("english document not routed")
	}
	if !f.router.SourceExists("/in/bad.rtf") || !f.router.SourceExists("/in/boom.doc") {
		t.Fatal("failed documents should stay in place")
	}
	if rec := f.observer.records["/in/boom.doc"]; !strings.Contains(rec.Error, "panic") {
		t.Fatalf("panic not recorded: %+v", rec)
	}
}

func TestPoolLeavesUnroutableDocuments(t *testing.T) {
	f := newFixture(t)
	f.add(t, "/in/fr.txt", "bonjour le monde")
	f.add(t, "/in/mystery.txt", "zzz qqq")
	f.add(t, "/in/blank.txt", "   \n\t ")

	summary := f.pool(t, 2).Run(context.Background(), f.queue)

	if summary.Count(OutcomeUnrecognized) != 2 || summary.Count(OutcomeEmpty) != 1 {
		t.Fatalf("outcomes = %v", summary.Outcomes)
	}
	for _, path := range []string{"/in/fr.txt", "/in/mystery.txt", "/in/blank.txt"} {
		if !f.router.SourceExists(path) {
			t.Fatalf("%s moved", path)
		}
	}
	if rec := f.observer.records["/in/fr.txt"]; rec.Language != "fr" {
		t.Fatalf("detected language not recorded: %+v", rec)
	}
	if f.classifier.calls.Load() != 2 {
		t.Fatalf("classifier called for blank text")
	}
	if exists, _ := afero.DirExists(f.fs, "/out"); exists {
		t.Fatal("output tree created without a routed document")
	}
}

func TestPoolRecordsMissingSource(t *testing.T) {
	f := newFixture(t)
	if err := f.queue.Put(scan.FileTask{Path: "/in/ghost.pdf"}); err != nil {
		t.Fatal(err)
	}
	f.add(t, "/in/real.txt", "hello")

	summary := f.pool(t, 2).Run(context.Background(), f.queue)

	if summary.Count(OutcomeMissing) != 1 || summary.Count(OutcomeRouted) != 1 {
		t.Fatalf("outcomes = %v", summary.Outcomes)
	}
}

func TestPoolDrainsAfterCancellation(t *testing.T) {
	f := newFixture(t)
	for i := range 20 {
		f.add(t, fmt.Sprintf("/in/%02d.txt", i), "hello")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := f.pool(t, 4).Run(ctx, f.queue)

	if summary.Count(OutcomeCancelled) != 20 {
		t.Fatalf("outcomes = %v", summary.Outcomes)
	}
	if f.queue.Unfinished() != 0 {
		t.Fatalf("unfinished = %d", f.queue.Unfinished())
	}
	if f.classifier.calls.Load() != 0 {
		t.Fatal("cancelled tasks reached the classifier")
	}
}

func TestPoolEmptyQueue(t *testing.T) {
	f := newFixture(t)
	summary := f.pool(t, 3).Run(context.Background(), f.queue)
	if summary.Total != 0 {
		t.Fatalf("total = %d", summary.Total)
	}
	if _, ok := f.queue.Get(); ok {
		t.Fatal("queue should be closed after Run")
	}
}

func TestNewPoolValidates(t *testing.T) {
	if _, err := NewPool(Stages{}, PoolOptions{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	f := newFixture(t)
	p := f.pool(t, 0)
	if p.Size() < 1 {
		t.Fatalf("default size = %d", p.Size())
	}
}

func TestOutcomeFor(t *testing.T) {
	cases := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeRouted},
		{context.Canceled, OutcomeCancelled},
		{services.Wrap(services.ErrCancelled, "workflow", "", "", nil), OutcomeCancelled},
		{services.Wrap(services.ErrMissingSource, "route", "", "", nil), OutcomeMissing},
		{services.Wrap(services.ErrUnrecognizedLanguage, "route", "", "", nil), OutcomeUnrecognized},
		{services.Wrap(services.ErrExtraction, "extract", "", "", errors.New("x")), OutcomeExtractionFailed},
		{services.Wrap(services.ErrRoute, "route", "", "", nil), OutcomeRouteFailed},
		{errors.New("mystery"), OutcomeFailed},
	}
	for _, tc := range cases {
		if got := outcomeFor(tc.err); got != tc.want {
			t.Errorf("outcomeFor(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
