package workflow

import (
	"sort"
	"sync"
	"time"
)

// Summary aggregates a pool run.
type Summary struct {
	Total     int
	Outcomes  map[Outcome]int
	Languages map[string]int
	Elapsed   time.Duration
}

// Count returns the number of documents that ended with o.
func (s Summary) Count(o Outcome) int {
	return s.Outcomes[o]
}

// Failures returns the number of documents with a failure outcome.
func (s Summary) Failures() int {
	n := 0
	for o, c := range s.Outcomes {
		if o.Failure() {
			n += c
		}
	}
	return n
}

// LanguageCodes returns the routed language codes sorted.
func (s Summary) LanguageCodes() []string {
	codes := make([]string, 0, len(s.Languages))
	for code := range s.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type tally struct {
	mu        sync.Mutex
	total     int
	outcomes  map[Outcome]int
	languages map[string]int
}

func newTally() *tally {
	return &tally{outcomes: make(map[Outcome]int), languages: make(map[string]int)}
}

// add records rec and returns the number of documents seen so far.
func (t *tally) add(rec Record) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.outcomes[rec.Outcome]++
	if rec.Outcome == OutcomeRouted && rec.Language != "" {
		t.languages[rec.Language]++
	}
	return t.total
}

func (t *tally) snapshot(elapsed time.Duration) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summary{
		Total:     t.total,
		Outcomes:  make(map[Outcome]int, len(t.outcomes)),
		Languages: make(map[string]int, len(t.languages)),
		Elapsed:   elapsed,
	}
	for k, v := range t.outcomes {
		s.Outcomes[k] = v
	}
	for k, v := range t.languages {
		s.Languages[k] = v
	}
	return s
}
