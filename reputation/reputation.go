// Package reputation folds per-session ratings into a user's running score.
package reputation

import (
	"math"

	"skillswap/models"
)

// Weights of the recency-weighted blend. Changing these breaks compatibility
// with every rating already stored.
const (
	oldWeight = 0.7
	newWeight = 0.3
)

// SessionAverages collects the ratings carried by a session's progress
// records, grouped by the record owner (the rating's recipient), and returns
// the per-recipient mean.
func SessionAverages(records []models.ProgressRecord) map[uint]float64 {
	sums := make(map[uint]int)
	counts := make(map[uint]int)
	for _, record := range records {
		if record.RatingGiven == nil {
			continue
		}
		sums[record.UserID] += *record.RatingGiven
		counts[record.UserID]++
	}

	averages := make(map[uint]float64, len(sums))
	for userID, sum := range sums {
		averages[userID] = float64(sum) / float64(counts[userID])
	}
	return averages
}

// Blend computes the user's next rating. A user with no prior rating (nil or
// zero) takes the session average outright; otherwise the new average is
// smoothed in at 30% and rounded to one decimal.
func Blend(current *float64, sessionAverage float64) float64 {
	if current == nil || *current == 0 {
		return sessionAverage
	}
	return round1(*current*oldWeight + sessionAverage*newWeight)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
