package businessflow

import "math"

// Score is the distance in hours between the local hour and the middle of the window.
// Lower scores are called first.
func Score(localHour int, window CallWindow) float64 {
	return math.Abs(float64(localHour) - window.Midpoint())
}
