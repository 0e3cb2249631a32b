package scoring

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/nyashahama/business-health-backend/internal/safe"
)

// ─── PRIORITY TIERS ───────────────────────────────────────────────────────────

// Tier is the urgency ladder. Lower values are more urgent; Escalate moves one
// step toward TierUrgent.
type Tier int

const (
	TierUrgent Tier = iota
	TierHigh
	TierMedium
	TierOptimize
	TierMaintain
)

var tierLabels = [...]string{
	TierUrgent:   "Urgent",
	TierHigh:     "High Priority",
	TierMedium:   "Medium Priority",
	TierOptimize: "Optimize",
	TierMaintain: "Maintain",
}

func (t Tier) String() string {
	if t < TierUrgent || t > TierMaintain {
		return "Unknown"
	}
	return tierLabels[t]
}

func (t Tier) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// Escalate returns the next more urgent tier. Urgent saturates.
func (t Tier) Escalate() Tier {
	if t <= TierUrgent {
		return TierUrgent
	}
	return t - 1
}

// TierFor maps a score onto the ladder using the same boundaries as Classify.
func TierFor(score float64) Tier {
	// BandLevel and Tier share the same five steps, worst first.
	return Tier(bandLevel(score))
}

// ─── RELATIVE BUMP ────────────────────────────────────────────────────────────

// Dimension is one sibling in a bump pass, typically a category.
type Dimension struct {
	Name  string
	Score float64
	// Benchmark overrides Config.GapBenchmark for this dimension when > 0.
	Benchmark float64
}

// BumpReason records why a dimension was escalated.
type BumpReason string

const (
	BumpLowestScore BumpReason = "lowest_score"
	BumpLargestGap  BumpReason = "largest_gap"
)

// RankedDimension is a Dimension after tiering.
type RankedDimension struct {
	Name      string       `json:"name"`
	Score     float64      `json:"score"`
	Benchmark float64      `json:"benchmark"`
	Gap       float64      `json:"gap"` // benchmark − score, may be negative
	Band      Band         `json:"band"`
	BaseTier  Tier         `json:"base_tier"`
	Tier      Tier         `json:"tier"`
	Reasons   []BumpReason `json:"reasons,omitempty"`
	// Rank is 1-indexed in priority order; set by RankDimensions.
	Rank int `json:"rank"`
}

// Bumped reports whether the relative pass escalated this dimension.
func (r RankedDimension) Bumped() bool { return r.Tier != r.BaseTier }

// ApplyBump tiers each dimension by score, then escalates by one step (a) the
// dimension with the strictly lowest score and (b) the dimension with the
// strictly largest positive gap to its benchmark. The first occurrence wins
// ties in both cases. A dimension picked by both is escalated once. Output
// order matches input order.
func (c Config) ApplyBump(dims []Dimension) []RankedDimension {
	out := make([]RankedDimension, len(dims))
	lowest, largest := -1, -1

	for i, d := range dims {
		score := safe.Float(d.Score)
		bench := d.Benchmark
		if bench <= 0 {
			bench = c.GapBenchmark
		}
		tier := TierFor(score)
		out[i] = RankedDimension{
			Name:      d.Name,
			Score:     score,
			Benchmark: bench,
			Gap:       bench - score,
			Band:      Classify(score),
			BaseTier:  tier,
			Tier:      tier,
		}

		if lowest < 0 || score < out[lowest].Score {
			lowest = i
		}
		if out[i].Gap > 0 && (largest < 0 || out[i].Gap > out[largest].Gap) {
			largest = i
		}
	}

	if lowest >= 0 {
		out[lowest].Tier = out[lowest].Tier.Escalate()
		out[lowest].Reasons = append(out[lowest].Reasons, BumpLowestScore)
	}
	if largest >= 0 {
		if largest != lowest {
			out[largest].Tier = out[largest].Tier.Escalate()
		}
		out[largest].Reasons = append(out[largest].Reasons, BumpLargestGap)
	}
	return out
}

// RankDimensions applies the bump pass and returns the dimensions sorted into
// priority order: most urgent tier first, then lowest score, then name for
// determinism. Rank is set on each element.
func (c Config) RankDimensions(dims []Dimension) []RankedDimension {
	ranked := c.ApplyBump(dims)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Tier != ranked[b].Tier {
			return ranked[a].Tier < ranked[b].Tier
		}
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score < ranked[b].Score
		}
		return ranked[a].Name < ranked[b].Name
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// FilterByTier returns only the dimensions in any of the given tiers,
// preserving order.
func FilterByTier(dims []RankedDimension, tiers ...Tier) []RankedDimension {
	set := make(map[Tier]struct{}, len(tiers))
	for _, t := range tiers {
		set[t] = struct{}{}
	}
	out := make([]RankedDimension, 0, len(dims))
	for _, d := range dims {
		if _, ok := set[d.Tier]; ok {
			out = append(out, d)
		}
	}
	return out
}

// OverallScore is the rounded mean of the dimension scores, or 0 when empty.
func OverallScore(dims []Dimension) int {
	if len(dims) == 0 {
		return 0
	}
	var total float64
	for _, d := range dims {
		total += safe.Float(d.Score)
	}
	return int(math.Round(total / float64(len(dims))))
}

// ─── QUICK-WIN PROJECTION ─────────────────────────────────────────────────────

// Projection is the expected outcome of closing part of a gap.
type Projection struct {
	Current           float64 `json:"current"`
	Benchmark         float64 `json:"benchmark"`
	Gap               float64 `json:"gap"`
	Improvement       float64 `json:"improvement"`
	Projected         float64 `json:"projected"`
	GapClosurePercent float64 `json:"gap_closure_percent"`
}

// ExpectedOutcome projects score after a quick win: gap = max(0, benchmark −
// score), improvement = round(gap × closure), projected = score + improvement.
// A benchmark ≤ 0 selects Config.ExcellenceBenchmark.
func (c Config) ExpectedOutcome(score, benchmark float64) Projection {
	score = safe.Float(score)
	if benchmark <= 0 {
		benchmark = c.ExcellenceBenchmark
	}
	gap := math.Max(0, benchmark-score)
	improvement := math.Round(gap * c.GapClosurePercent / 100)
	return Projection{
		Current:           score,
		Benchmark:         benchmark,
		Gap:               gap,
		Improvement:       improvement,
		Projected:         score + improvement,
		GapClosurePercent: c.GapClosurePercent,
	}
}

// ─── DE-DUPLICATION ───────────────────────────────────────────────────────────

// TitleSet tracks action titles already emitted, compared trimmed and
// case-insensitively.
type TitleSet struct {
	seen map[string]struct{}
}

// NewTitleSet returns an empty set.
func NewTitleSet() *TitleSet {
	return &TitleSet{seen: make(map[string]struct{})}
}

// Add records title and reports whether it was new. Blank titles are never
// new.
func (s *TitleSet) Add(title string) bool {
	key := strings.ToLower(strings.TrimSpace(title))
	if key == "" {
		return false
	}
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Dedupe drops every item whose title was already seen, earlier in items or
// in a previous call sharing the same set. First-seen order is preserved.
func Dedupe[T any](set *TitleSet, items []T, title func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if set.Add(title(it)) {
			out = append(out, it)
		}
	}
	return out
}
