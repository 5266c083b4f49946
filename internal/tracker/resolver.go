package tracker

import (
	"context"
	"log"

	"ai-calories/internal/models"
)

// OutcomeKind classifies the result of a strategy or of a whole resolution.
type OutcomeKind int

const (
	Miss OutcomeKind = iota
	Resolved
	NeedsClarification
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Miss:
		return "miss"
	case Resolved:
		return "resolved"
	case NeedsClarification:
		return "clarification"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what a strategy, and finally the resolver, produced for an item.
type Outcome struct {
	Kind     OutcomeKind
	Record   *models.NutritionRecord
	Status   models.ItemStatus
	Message  string
	Strategy string
	Err      error
}

// Strategy is one step of the resolution chain. Returning an error stops the
// chain; lookups that simply found nothing return a Miss outcome instead.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, itemName string) (Outcome, error)
}

// Resolver runs its strategies in order until one does not miss.
type Resolver struct {
	strategies []Strategy
	recorder   Recorder
}

// NewResolver builds a resolver over the given ordered strategies.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, recorder: nopRecorder{}}
}

// DefaultStrategies returns exact, chain-aware, fuzzy, external and
// estimation lookups in that order. A nil external or estimator is left out.
func DefaultStrategies(store Store, external ExternalLookup, estimator Estimator) []Strategy {
	strategies := []Strategy{
		ExactMatch{Store: store},
		NewChainSearch(store),
		FuzzyMatch{Store: store},
	}
	if external != nil {
		strategies = append(strategies, ExternalSearch{Store: store, Lookup: external})
	}
	if estimator != nil {
		strategies = append(strategies, Estimation{Store: store, Estimator: estimator})
	}
	return strategies
}

// SetRecorder installs r as the event sink.
func (r *Resolver) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	r.recorder = rec
}

// Strategies returns the names of the configured strategies in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve runs the chain for itemName.
func (r *Resolver) Resolve(ctx context.Context, itemName string) Outcome {
	for _, s := range r.strategies {
		out, err := s.Attempt(ctx, itemName)
		if err != nil {
			log.Printf("Resolver: %s failed for %q: %v", s.Name(), itemName, err)
			r.recorder.ObserveResolution(s.Name(), "error")
			return Outcome{Kind: Failed, Status: models.ItemFailed, Strategy: s.Name(), Err: err}
		}
		if out.Kind == Miss {
			continue
		}
		out.Strategy = s.Name()
		r.recorder.ObserveResolution(s.Name(), out.Kind.String())
		return out
	}

	log.Printf("Resolver: no strategy could resolve %q", itemName)
	r.recorder.ObserveResolution("none", Failed.String())
	return Outcome{Kind: Failed, Status: models.ItemFailed}
}
