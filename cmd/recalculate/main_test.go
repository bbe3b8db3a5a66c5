package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

func TestPrintBands(t *testing.T) {
	var buf bytes.Buffer
	printBands(&buf, []domain.CompatibilityScore{
		{FinalScore: 0.9},
		{FinalScore: 0.85},
		{FinalScore: 0.5},
		{FinalScore: 0.1},
	})

	want := []string{
		"  very_strong  2",
		"  strong       0",
		"  moderate     1",
		"  weak         0",
		"  mismatch     1",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
