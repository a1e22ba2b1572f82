// ABOUTME: Tests for pricing lookup, cost estimation, and the usage tracker
// ABOUTME: Covers exact and dated-snapshot ids, unknown models, and summary formatting

package telemetry

import (
	"math"
	"sync"
	"testing"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      string
		wantIn  float64
		wantOut float64
		wantOK  bool
	}{
		{"gpt-4.1", 2.00, 8.00, true},
		{"gpt-4.1-mini", 0.40, 1.60, true},
		{"gpt-4o-mini", 0.15, 0.60, true},
		{"gpt-4o-2024-08-06", 2.50, 10.00, true},
		{"gpt-4o-mini-2024-07-18", 0.15, 0.60, true},
		{"gpt-4.1-mini-2025-04-14", 0.40, 1.60, true},
		{"gpt-4oz", 0, 0, false},
		{"llama3", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			got, ok := Lookup(tt.id)
			if ok != tt.wantOK || got.InputPerMillion != tt.wantIn || got.OutputPerMillion != tt.wantOut {
				t.Errorf("Lookup(%q) = %+v, %v", tt.id, got, ok)
			}
		})
	}
}

func TestCost(t *testing.T) {
	t.Parallel()

	cost, ok := Cost("gpt-4o", ai.Usage{InputTokens: 1_000_000, OutputTokens: 500_000})
	if !ok || math.Abs(cost-7.5) > 1e-9 {
		t.Errorf("Cost = %v, %v; want 7.5", cost, ok)
	}
	if cost, ok := Cost("llama3", ai.Usage{InputTokens: 10}); ok || cost != 0 {
		t.Errorf("unknown model cost = %v, %v", cost, ok)
	}
}

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add("gpt-4o", ai.Usage{InputTokens: 100, OutputTokens: 10})
		}()
	}
	wg.Wait()
	tr.Add("llama3", ai.Usage{InputTokens: 5, OutputTokens: 5})

	if tr.Turns() != 11 {
		t.Errorf("Turns = %d, want 11", tr.Turns())
	}
	if got := tr.Total(); got.InputTokens != 1005 || got.OutputTokens != 105 {
		t.Errorf("Total = %+v", got)
	}

	want := "gpt-4o: 1000 in / 100 out (~$0.0035)\nllama3: 5 in / 5 out\n"
	if got := tr.Summary(); got != want {
		t.Errorf("Summary =\n%s\nwant\n%s", got, want)
	}
}

func TestTracker_Empty(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	if tr.Summary() != "" || tr.Turns() != 0 {
		t.Error("empty tracker should have no summary")
	}
}
