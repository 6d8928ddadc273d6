package performance

import "math"

// ComputeHike derives the raise from the employee's current annual base
// salary. The amount rounds half up to the nearest smallest currency unit.
func ComputeHike(currentSalary int64, percent float64) (amount, proposed int64) {
	amount = int64(math.Floor(float64(currentSalary)*percent/100 + 0.5))
	return amount, currentSalary + amount
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
