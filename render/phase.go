package render

import (
	"math"
	"strconv"
)

// FormatPhase formats a phase given in units of pi, using fractions of π
// when the phase is a multiple of π/d for small d: 0.5 → "π/2",
// -1.5 → "-3π/2", 2 → "2π".
func FormatPhase(p float64) string {
	if p == 0 {
		return "0"
	}
	for _, den := range []int{1, 2, 3, 4, 6, 8} {
		scaled := p * float64(den)
		num := math.Round(scaled)
		if math.Abs(num-scaled) > 1e-9 {
			continue
		}
		return piFraction(int(num), den)
	}
	return strconv.FormatFloat(p, 'g', 4, 64) + "π"
}

func piFraction(num, den int) string {
	sign := ""
	if num < 0 {
		sign, num = "-", -num
	}
	coeff := ""
	if num != 1 {
		coeff = strconv.Itoa(num)
	}
	if den == 1 {
		return sign + coeff + "π"
	}
	return sign + coeff + "π/" + strconv.Itoa(den)
}
