package utils

import (
	"strconv"
	"strings"
)

// NormalizeRut strips dots and spaces and upper-cases the check digit, giving
// the "12345678-K" form stored in the database.
func NormalizeRut(rut string) string {
	r := strings.ToUpper(strings.TrimSpace(rut))
	r = strings.ReplaceAll(r, ".", "")
	r = strings.ReplaceAll(r, " ", "")
	if !strings.Contains(r, "-") && len(r) > 1 {
		r = r[:len(r)-1] + "-" + r[len(r)-1:]
	}
	return r
}

// RutCheckDigit computes the modulo-11 check digit for a RUT body.
func RutCheckDigit(body int) string {
	sum, factor := 0, 2
	for body > 0 {
		sum += (body % 10) * factor
		body /= 10
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(dv)
	}
}

// ValidRut reports whether a normalized RUT has a correct check digit.
func ValidRut(rut string) bool {
	parts := strings.Split(rut, "-")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 1 {
		return false
	}
	body, err := strconv.Atoi(parts[0])
	if err != nil || body <= 0 {
		return false
	}
	return RutCheckDigit(body) == parts[1]
}
