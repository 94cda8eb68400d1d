package scheduling

import "math"

// GroupPrice recomputes one booking's price inside a shared visit:
// basePrice x dogCount x (1 - discountRate), rounded to cents.
func GroupPrice(basePrice float64, dogCount int, discountRate float64) float64 {
	price := basePrice * float64(dogCount) * (1 - discountRate)
	return math.Round(price*100) / 100
}

// GroupSavings is the per-booking amount saved versus an individual
// visit at the same base price.
func GroupSavings(basePrice float64, dogCount int, discountRate float64) float64 {
	full := basePrice * float64(dogCount)
	return math.Round((full-GroupPrice(basePrice, dogCount, discountRate))*100) / 100
}
