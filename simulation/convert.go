package simulation

import (
	"math"
)

const (
	kphPerMph   = 1.609344
	inchesPerMm = 0.03937
)

// FahrenheitToCelsius converts and rounds to 4 significant figures
func FahrenheitToCelsius(f float64) float64 {
	return RoundSignificant((f-32)*5/9, 4)
}

// MphToKph converts wind speed, truncating to whole kilometres per hour
func MphToKph(mph int) int {
	return int(float64(mph) * kphPerMph)
}

// InchesToMillimetres converts precipitation, truncating to whole millimetres
func InchesToMillimetres(in int) int {
	return int(float64(in) / inchesPerMm)
}

// RoundSignificant rounds x to n significant figures
func RoundSignificant(x float64, n int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	pow := math.Pow(10, float64(n)-magnitude)
	return math.Round(x*pow) / pow
}
