// ABOUTME: Token usage accounting and cost estimation for chat turns
// ABOUTME: Prices cover the built-in catalog; unknown or local models are reported without a cost

package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// Pricing holds per-million-token rates in USD.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// pricing is keyed by model id prefix; Lookup takes the longest match.
var pricing = map[string]Pricing{
	"gpt-4.1":      {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"gpt-4.1-mini": {InputPerMillion: 0.40, OutputPerMillion: 1.60},
	"gpt-4.1-nano": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gpt-4o":       {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":  {InputPerMillion: 0.15, OutputPerMillion: 0.60},
}

// Lookup returns the pricing for a model id and whether it is known.
// Dated snapshots ("gpt-4o-2024-08-06") match their family.
func Lookup(modelID string) (Pricing, bool) {
	if p, ok := pricing[modelID]; ok {
		return p, true
	}
	best := ""
	for key := range pricing {
		if strings.HasPrefix(modelID, key+"-") && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return Pricing{}, false
	}
	return pricing[best], true
}

// Cost estimates the USD cost of usage on modelID. ok is false when the
// model has no known price.
func Cost(modelID string, usage ai.Usage) (cost float64, ok bool) {
	p, ok := Lookup(modelID)
	if !ok {
		return 0, false
	}
	return float64(usage.InputTokens)/1_000_000*p.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*p.OutputPerMillion, true
}

// Tracker accumulates usage per model over a conversation.
type Tracker struct {
	mu    sync.Mutex
	byID  map[string]ai.Usage
	turns int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{byID: make(map[string]ai.Usage)}
}

// Add records one answered turn.
func (t *Tracker) Add(modelID string, usage ai.Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.byID[modelID]
	u.InputTokens += usage.InputTokens
	u.OutputTokens += usage.OutputTokens
	t.byID[modelID] = u
	t.turns++
}

// Turns returns the number of recorded turns.
func (t *Tracker) Turns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.turns
}

// Total returns the summed usage across models.
func (t *Tracker) Total() ai.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total ai.Usage
	for _, u := range t.byID {
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	return total
}

// Summary renders one line per model, sorted by id, e.g.
// "gpt-4o: 1200 in / 300 out (~$0.0060)".
func (t *Tracker) Summary() string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	usage := make(map[string]ai.Usage, len(t.byID))
	for id, u := range t.byID {
		usage[id] = u
	}
	t.mu.Unlock()

	sort.Strings(ids)
	var b strings.Builder
	for _, id := range ids {
		u := usage[id]
		fmt.Fprintf(&b, "%s: %d in / %d out", id, u.InputTokens, u.OutputTokens)
		if cost, ok := Cost(id, u); ok {
			fmt.Fprintf(&b, " (~$%.4f)", cost)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
