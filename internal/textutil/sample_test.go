package textutil

import (
	"fmt"
	"strings"
	"testing"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestSampleEmptyInput(t *testing.T) {
	for _, input := range []string{"", " ", "\n\t  \r\n"} {
		if got := Sample(input, 40); got != "" {
			t.Fatalf("Sample(%q) = %q, want empty", input, got)
		}
	}
}

func TestSampleHundredWordsTakesMiddleWindow(t *testing.T) {
	words := numberedWords(100)
	got := Sample(strings.Join(words, " "), 40)
	want := strings.Join(words[30:70], " ")
	if got != want {
		t.Fatalf("Sample() = %q, want %q", got, want)
	}
}

func TestSampleShortTextReturnsEverything(t *testing.T) {
	words := numberedWords(10)
	got := Sample(strings.Join(words, "\n  "), 40)
	want := strings.Join(words, " ")
	if got != want {
		t.Fatalf("Sample() = %q, want %q", got, want)
	}
}

func TestSampleWordCounts(t *testing.T) {
	tests := []struct {
		total  int
		window int
		start  int
		want   int
	}{
		{total: 1, window: 40, start: 0, want: 1},
		{total: 39, window: 40, start: 0, want: 39},
		{total: 40, window: 40, start: 0, want: 40},
		{total: 41, window: 40, start: 0, want: 40},
		{total: 60, window: 40, start: 10, want: 40},
		{total: 61, window: 40, start: 10, want: 40},
		{total: 1000, window: 40, start: 480, want: 40},
		{total: 9, window: 4, start: 2, want: 4},
		{total: 7, window: 3, start: 2, want: 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_words_window_%d", tt.total, tt.window), func(t *testing.T) {
			words := numberedWords(tt.total)
			got := strings.Fields(Sample(strings.Join(words, " "), tt.window))
			if len(got) != tt.want {
				t.Fatalf("got %d words, want %d", len(got), tt.want)
			}
			if got[0] != words[tt.start] {
				t.Fatalf("window starts at %q, want %q", got[0], words[tt.start])
			}
		})
	}
}

func TestSampleNonPositiveWindowUsesDefault(t *testing.T) {
	words := numberedWords(200)
	text := strings.Join(words, " ")
	if got, want := Sample(text, 0), Sample(text, DefaultSampleWindow); got != want {
		t.Fatalf("Sample(text, 0) = %q, want %q", got, want)
	}
	if got := WordCount(Sample(text, -5)); got != DefaultSampleWindow {
		t.Fatalf("negative window produced %d words", got)
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	text := "שלום עולם זהו מסמך לדוגמה עם כמה מילים בעברית ועוד כמה מילים"
	first := Sample(text, 6)
	for i := 0; i < 10; i++ {
		if got := Sample(text, 6); got != first {
			t.Fatalf("run %d: Sample() = %q, want %q", i, got, first)
		}
	}
}

func TestDirName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hebrew", "hebrew"},
		{"English Docs", "english_docs"},
		{"../escape", "escape"},
		{"", "unknown"},
		{"***", "unknown"},
		{"fr-CA", "fr-ca"},
		{"עברית", "עברית"},
		{"Документы  RU", "документы_ru"},
		{"a//b", "a_b"},
		{"..", "unknown"},
	}
	for _, tt := range tests {
		if got := DirName(tt.input); got != tt.want {
			t.Errorf("DirName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
