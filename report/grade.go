package report

import "math"

// Grade is a letter grade shown on score cards.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Score band lower bounds, checked in descending order.
const (
	bandA = 80
	bandB = 60
	bandC = 40
	bandD = 20
)

// GradeFor maps a 0-100 score to a letter grade. Scores are not clamped:
// anything at or above 80 is an A. NaN and infinities grade as F.
func GradeFor(score float64) Grade {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return GradeF
	}

	switch {
	case score >= bandA:
		return GradeA
	case score >= bandB:
		return GradeB
	case score >= bandC:
		return GradeC
	case score >= bandD:
		return GradeD
	default:
		return GradeF
	}
}

// Rating is the worded form of a score band.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingAverage   Rating = "Average"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "Very Poor"
)

// RatingFor uses the same bands as GradeFor.
func RatingFor(score float64) Rating {
	switch GradeFor(score) {
	case GradeA:
		return RatingExcellent
	case GradeB:
		return RatingGood
	case GradeC:
		return RatingAverage
	case GradeD:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}

// QualityLabel is the four-step label used for referring domains and
// competitors, where everything under 40 is simply Poor.
func QualityLabel(score float64) Rating {
	if r := RatingFor(score); r != RatingVeryPoor {
		return r
	}
	return RatingPoor
}
