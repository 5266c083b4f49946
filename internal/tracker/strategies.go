package tracker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"ai-calories/internal/models"
)

// MaxClarificationOptions caps the names offered in a disambiguation prompt.
const MaxClarificationOptions = 4

// KnownChains are restaurant and convenience store names whose menus are
// seeded into the store with the chain name as a prefix.
var KnownChains = []string{
	"mcdonald",
	"mos burger",
	"burger king",
	"kfc",
	"starbucks",
	"subway",
	"matsuya",
	"sukiya",
	"yoshinoya",
	"nakau",
	"tenya",
	"coco ichibanya",
	"saizeriya",
	"lawson",
	"familymart",
	"family mart",
	"7-eleven",
	"seven eleven",
}

// GenericSuffixes are dropped, with the chain name, when retrying a chain
// search that found nothing.
var GenericSuffixes = []string{"burger", "set"}

// ExactMatch looks the item up by its normalized name.
type ExactMatch struct {
	Store Store
}

func (ExactMatch) Name() string { return "exact" }

func (s ExactMatch) Attempt(ctx context.Context, itemName string) (Outcome, error) {
	rec, err := s.Store.Get(ctx, itemName)
	if err != nil {
		return Outcome{}, err
	}
	if rec == nil {
		return Outcome{Kind: Miss}, nil
	}
	return Outcome{Kind: Resolved, Record: rec, Status: models.ItemFromDB}, nil
}

// ChainSearch handles items that name a known chain.
type ChainSearch struct {
	Store    Store
	Chains   []string
	Suffixes []string
}

// NewChainSearch returns a ChainSearch over KnownChains and GenericSuffixes.
func NewChainSearch(store Store) ChainSearch {
	return ChainSearch{Store: store, Chains: KnownChains, Suffixes: GenericSuffixes}
}

func (ChainSearch) Name() string { return "chain" }

func (s ChainSearch) Attempt(ctx context.Context, itemName string) (Outcome, error) {
	query := models.NormalizeName(itemName)
	chain := s.matchChain(query)
	if chain == "" {
		return Outcome{Kind: Miss}, nil
	}

	candidates, err := s.Store.FindCandidates(ctx, query, MaxClarificationOptions+1)
	if err != nil {
		return Outcome{}, err
	}

	if len(candidates) == 0 {
		stripped := s.stripQuery(query, chain)
		if stripped != "" && stripped != query {
			// the stripped query is broad, so fetch wide and keep only this chain
			found, err := s.Store.FindCandidates(ctx, stripped, 50)
			if err != nil {
				return Outcome{}, err
			}
			for _, c := range found {
				if strings.Contains(c.Key(), chain) {
					candidates = append(candidates, c)
				}
				if len(candidates) > MaxClarificationOptions {
					break
				}
			}
		}
	}

	switch len(candidates) {
	case 0:
		return Outcome{Kind: Miss}, nil
	case 1:
		return Outcome{Kind: Resolved, Record: &candidates[0], Status: models.ItemChainMatch}, nil
	default:
		return Outcome{Kind: NeedsClarification, Message: clarificationMessage(itemName, candidates)}, nil
	}
}

func (s ChainSearch) matchChain(query string) string {
	chains := append([]string(nil), s.Chains...)
	sort.SliceStable(chains, func(i, j int) bool { return len(chains[i]) > len(chains[j]) })
	for _, c := range chains {
		if strings.Contains(query, c) {
			return c
		}
	}
	return ""
}

// stripQuery removes the chain name, possessive leftovers and generic
// suffix words from query.
func (s ChainSearch) stripQuery(query, chain string) string {
	suffixes := make(map[string]bool, len(s.Suffixes))
	for _, w := range s.Suffixes {
		suffixes[w] = true
	}

	var kept []string
	for _, w := range strings.Fields(strings.ReplaceAll(query, chain, " ")) {
		rest := strings.TrimLeft(w, "'’")
		if rest == "" || rest == "s" || suffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func clarificationMessage(itemName string, candidates []models.NutritionRecord) string {
	n := len(candidates)
	if n > MaxClarificationOptions {
		n = MaxClarificationOptions
	}
	names := make([]string, 0, n)
	for _, c := range candidates[:n] {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("I found several matches for %q. Which one did you have: %s?", itemName, strings.Join(names, ", "))
}

// FuzzyMatch takes the shortest stored name containing the item.
type FuzzyMatch struct {
	Store Store
}

func (FuzzyMatch) Name() string { return "fuzzy" }

func (s FuzzyMatch) Attempt(ctx context.Context, itemName string) (Outcome, error) {
	rec, err := s.Store.FuzzySearchOne(ctx, itemName)
	if err != nil {
		return Outcome{}, err
	}
	if rec == nil {
		return Outcome{Kind: Miss}, nil
	}
	return Outcome{Kind: Resolved, Record: rec, Status: models.ItemFuzzyMatch}, nil
}

// ExternalSearch queries the external food database for multi-word items
// and saves hits under the item name.
type ExternalSearch struct {
	Store  Store
	Lookup ExternalLookup
}

func (ExternalSearch) Name() string { return "external" }

func (s ExternalSearch) Attempt(ctx context.Context, itemName string) (Outcome, error) {
	// a bare word is too ambiguous for a global search
	if len(strings.Fields(itemName)) < 2 {
		return Outcome{Kind: Miss}, nil
	}

	found, err := s.Lookup.Search(ctx, itemName)
	if err != nil {
		log.Printf("Resolver: external lookup for %q failed: %v", itemName, err)
		return Outcome{Kind: Miss}, nil
	}
	if found == nil || found.Calories <= 0 {
		return Outcome{Kind: Miss}, nil
	}

	rec := found.Sanitized()
	rec.Name = models.NormalizeName(itemName)
	rec.Source = models.SourceExternal
	if err := s.Store.Put(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("failed to save external record: %w", err)
	}
	return Outcome{Kind: Resolved, Record: &rec, Status: models.ItemFoundExternal}, nil
}

// Estimation asks the estimator for a best guess and saves it under the
// item name so the next lookup is an exact match.
type Estimation struct {
	Store     Store
	Estimator Estimator
}

func (Estimation) Name() string { return "estimate" }

func (s Estimation) Attempt(ctx context.Context, itemName string) (Outcome, error) {
	guess, err := s.Estimator.Estimate(ctx, itemName)
	if err != nil {
		log.Printf("Resolver: estimation for %q failed: %v", itemName, err)
		return Outcome{Kind: Miss}, nil
	}
	if guess == nil {
		return Outcome{Kind: Miss}, nil
	}

	rec := guess.Sanitized()
	rec.Name = models.NormalizeName(itemName)
	rec.Source = models.SourceEstimated
	if err := s.Store.Put(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("failed to save estimated record: %w", err)
	}
	return Outcome{Kind: Resolved, Record: &rec, Status: models.ItemNewlyEstimated}, nil
}
