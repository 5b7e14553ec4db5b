package downsample

import "sort"

// Rule is one row of the downsampling cadence table. ResolutionMinutes
// of 0 means "keep all" -- the window is left untouched at this
// importance tier.
type Rule struct {
	MaxAgeDays        int
	MinImportance     float64
	ResolutionMinutes int
}

// Rules is the fixed cadence table the engine walks every cycle.
var Rules = []Rule{
	{MaxAgeDays: 1, MinImportance: 0, ResolutionMinutes: 0},
	{MaxAgeDays: 7, MinImportance: 80, ResolutionMinutes: 0},
	{MaxAgeDays: 7, MinImportance: 50, ResolutionMinutes: 5},
	{MaxAgeDays: 7, MinImportance: 0, ResolutionMinutes: 15},
	{MaxAgeDays: 30, MinImportance: 80, ResolutionMinutes: 5},
	{MaxAgeDays: 30, MinImportance: 50, ResolutionMinutes: 60},
	{MaxAgeDays: 30, MinImportance: 0, ResolutionMinutes: 360},
	{MaxAgeDays: 90, MinImportance: 0, ResolutionMinutes: 1440},
}

// ages lists the distinct max-age windows the engine evaluates, in the
// order they're processed each cycle.
func ages() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range Rules {
		if !seen[r.MaxAgeDays] {
			seen[r.MaxAgeDays] = true
			out = append(out, r.MaxAgeDays)
		}
	}
	sort.Ints(out)
	return out
}

// resolutionFor picks the cadence-table tier for a given age window and
// importance score: the tier with the highest MinImportance the score
// still clears. A score below every tier's threshold for this age falls
// into the lowest (coarsest) tier, since MinImportance 0 always matches.
// Returns 0 when the matching tier is "keep all".
func resolutionFor(ageDays int, score float64) int {
	var tiers []Rule
	for _, r := range Rules {
		if r.MaxAgeDays == ageDays {
			tiers = append(tiers, r)
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinImportance > tiers[j].MinImportance })

	for _, t := range tiers {
		if score >= t.MinImportance {
			return t.ResolutionMinutes
		}
	}
	return 0
}
