package langdetect

import (
	"context"
	"errors"
	"testing"
)

const (
	hebrewSample  = "זהו מסמך קורות חיים הכתוב בעברית ומתאר ניסיון תעסוקתי רב שנים בתחום הפיתוח והניהול של צוותים"
	englishSample = "This curriculum vitae describes many years of professional experience in software development and team management"
)

func TestWhatlangDetectsHebrewAndEnglish(t *testing.T) {
	model, err := NewWhatlang(nil)
	if err != nil {
		t.Fatalf("NewWhatlang: %v", err)
	}
	c, err := New(context.Background(), model, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := c.Classify(context.Background(), hebrewSample); got.Code != "he" {
		t.Fatalf("hebrew sample classified as %+v", got)
	}
	if got := c.Classify(context.Background(), englishSample); got.Code != "en" {
		t.Fatalf("english sample classified as %+v", got)
	}
}

func TestWhatlangDeterministic(t *testing.T) {
	model, err := NewWhatlang(nil)
	if err != nil {
		t.Fatalf("NewWhatlang: %v", err)
	}
	first, err := model.Detect(context.Background(), englishSample)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	for range 10 {
		again, err := model.Detect(context.Background(), englishSample)
		if err != nil || again != first {
			t.Fatalf("non-deterministic detection: %+v vs %+v (%v)", first, again, err)
		}
	}
}

func TestWhatlangNoScript(t *testing.T) {
	model, err := NewWhatlang(nil)
	if err != nil {
		t.Fatalf("NewWhatlang: %v", err)
	}
	if _, err := model.Detect(context.Background(), "1234 5678 !!! ???"); !errors.Is(err, ErrNoScript) {
		t.Fatalf("expected ErrNoScript, got %v", err)
	}
}

func TestWhatlangCandidates(t *testing.T) {
	model, err := NewWhatlang([]string{"he", "en"})
	if err != nil {
		t.Fatalf("NewWhatlang: %v", err)
	}
	got, err := model.Detect(context.Background(), englishSample)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if got.Code != "eng" {
		t.Fatalf("expected eng, got %+v", got)
	}

	if _, err := NewWhatlang([]string{"x1z"}); err == nil {
		t.Fatal("expected unsupported candidate rejected")
	}
}
