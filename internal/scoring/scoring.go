// Package scoring rates ideas and buckets them into priority tiers.
package scoring

import (
	"math"

	"github.com/yukikurage/release-planner/internal/models"
)

// Tier is the priority bucket derived from a score.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierDiscard Tier = "discard"
)

// Criterion weights, in hundredths.
const (
	weightImpact      = 35
	weightFeasibility = 30
	weightAlignment   = 25
	weightUrgency     = 10
)

const (
	minRating = 1
	maxRating = 10
)

// Result is the outcome of scoring one evaluation.
type Result struct {
	// Score is the exact weighted sum.
	Score float64 `json:"score"`
	// Display is Score rounded to one decimal.
	Display float64 `json:"display"`
	Tier    Tier    `json:"tier"`
}

// Clamp forces every rating into [1,10].
func Clamp(e models.Evaluation) models.Evaluation {
	return models.Evaluation{
		Impact:      clampRating(e.Impact),
		Feasibility: clampRating(e.Feasibility),
		Alignment:   clampRating(e.Alignment),
		Urgency:     clampRating(e.Urgency),
	}
}

// Score returns the weighted sum of the (clamped) evaluation.
// The sum is taken in integer hundredths so tier boundaries are exact.
func Score(e models.Evaluation) float64 {
	return float64(hundredths(Clamp(e))) / 100
}

// Round rounds a score to one decimal for display.
func Round(score float64) float64 {
	return math.Round(score*10) / 10
}

// TierFor buckets a score, checking thresholds from high to low.
func TierFor(score float64) Tier {
	switch {
	case score >= 8.0:
		return TierHigh
	case score >= 6.0:
		return TierMedium
	case score >= 4.0:
		return TierLow
	default:
		return TierDiscard
	}
}

// Evaluate scores e and derives its tier.
func Evaluate(e models.Evaluation) Result {
	score := Score(e)
	return Result{
		Score:   score,
		Display: Round(score),
		Tier:    TierFor(score),
	}
}

func hundredths(e models.Evaluation) int {
	return weightImpact*e.Impact +
		weightFeasibility*e.Feasibility +
		weightAlignment*e.Alignment +
		weightUrgency*e.Urgency
}

func clampRating(v int) int {
	if v < minRating {
		return minRating
	}
	if v > maxRating {
		return maxRating
	}
	return v
}
