package model

// DefaultForecastDays is the horizon requested when none is configured.
const DefaultForecastDays = 14

// ForecastPoint is the predicted demand for one day.
type ForecastPoint struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
}

// ForecastTotal sums demand across the points.
func ForecastTotal(points []ForecastPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Forecast
	}
	return total
}

// ForecastPeak returns the point with the highest demand. ok is false for an empty series.
func ForecastPeak(points []ForecastPoint) (peak ForecastPoint, ok bool) {
	for i, p := range points {
		if i == 0 || p.Forecast > peak.Forecast {
			peak = p
			ok = true
		}
	}
	return peak, ok
}
