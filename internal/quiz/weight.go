package quiz

import "time"

// Ageing bounds. A question never answered incorrectly is treated as if its
// last mistake happened at farPast.
var (
	farPast   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// Weight scores a question for the weighted pick: (incorrect+1) times the
// minutes between its last mistake and farFuture. Older mistakes age toward
// a higher weight.
func Weight(q Question) float64 {
	errorFactor := float64(q.IncorrectCount + 1)
	return errorFactor * recencyMinutes(q.LastIncorrectAt)
}

// recencyMinutes works on unix seconds; the span exceeds time.Duration.
func recencyMinutes(lastIncorrect *time.Time) float64 {
	since := farPast
	if lastIncorrect != nil {
		since = *lastIncorrect
	}
	if since.After(farFuture) {
		return 0
	}
	return float64(farFuture.Unix()-since.Unix()) / 60
}
