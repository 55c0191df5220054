package suite

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// fractionRegex matches plain fractions: 1/2, -3/4, 0.5/2
var fractionRegex = regexp.MustCompile(`^(-?\d*\.?\d+)\s*/\s*(\d*\.?\d+)$`)

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, -π/2
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*(?:pi|π)(?:\s*/\s*(\d*\.?\d+))?$`)

// ParsePhase parses a phase in units of pi. Supported formats:
//   - Plain numbers: "0.5", "-1", "1e-3"
//   - Fractions: "1/2", "-3/4"
//   - Pi expressions, read as multiples of pi: "pi/2", "-3*pi/4", "π"
func ParsePhase(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty phase")
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("phase %q is not finite", s)
		}
		return val, nil
	}

	if m := fractionRegex.FindStringSubmatch(s); m != nil {
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("phase %q: %w", s, err)
		}
		den, err := strconv.ParseFloat(m[2], 64)
		if err != nil || den == 0 {
			return 0, fmt.Errorf("phase %q: invalid denominator", s)
		}
		return num / den, nil
	}

	if m := piExprRegex.FindStringSubmatch(strings.ToLower(s)); m != nil {
		coeff := 1.0
		if m[2] != "" {
			var err error
			if coeff, err = strconv.ParseFloat(m[2], 64); err != nil {
				return 0, fmt.Errorf("phase %q: %w", s, err)
			}
		}
		if m[3] != "" {
			den, err := strconv.ParseFloat(m[3], 64)
			if err != nil || den == 0 {
				return 0, fmt.Errorf("phase %q: invalid denominator", s)
			}
			coeff /= den
		}
		if m[1] == "-" {
			coeff = -coeff
		}
		return coeff, nil
	}

	return 0, fmt.Errorf("phase %q: want a number, a fraction like 1/2, or a multiple of pi", s)
}
