package service

// Per-token constants used to derive the sustainability metrics of an evaluation.
const (
	CO2GramsPerToken = 0.0004
	CostUSDPerToken  = 0.00002
)

// EstimateCO2 returns the estimated grams of CO2 for the token count.
func EstimateCO2(tokens int) float64 {
	return float64(tokens) * CO2GramsPerToken
}

// EstimateCost returns the estimated USD cost for the token count.
func EstimateCost(tokens int) float64 {
	return float64(tokens) * CostUSDPerToken
}
