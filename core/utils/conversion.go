package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// zeroDecimalCurrencies lists ISO codes whose minor unit equals the major unit.
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// MinorUnitExponent returns the number of decimal places of the currency's minor unit.
func MinorUnitExponent(currency string) int {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(currency)]; ok {
		return 0
	}
	return 2
}

// ToMinorUnits converts an amount written in major units to integer minor units.
// It accepts integer and float numbers as decoded from JSON/YAML, json.Number and
// decimal strings, with or without exponent ("4.9e1"). Strings and json.Number are
// parsed exactly; floats are rounded to the nearest minor unit.
// Negative amounts and amounts with more precision than the currency allows are rejected.
func ToMinorUnits(val any, currency string) (int64, error) {
	exp := MinorUnitExponent(currency)
	scale := int64(math.Pow10(exp))

	switch v := val.(type) {
	case int:
		return scaleInt(int64(v), scale)
	case int64:
		return scaleInt(v, scale)
	case int32:
		return scaleInt(int64(v), scale)
	case uint:
		return scaleInt(int64(v), scale)
	case uint64:
		return scaleInt(int64(v), scale)
	case float64:
		return scaleFloat(v, exp)
	case float32:
		return scaleFloat(float64(v), exp)
	case string:
		return parseDecimal(v, exp)
	case json.Number:
		return parseDecimal(string(v), exp)
	case nil:
		return 0, fmt.Errorf("amount is missing")
	default:
		return parseDecimal(fmt.Sprintf("%v", v), exp)
	}
}

func scaleInt(v, scale int64) (int64, error) {
	if v < 0 {
		return 0, fmt.Errorf("amount %d is negative", v)
	}
	if v > math.MaxInt64/scale {
		return 0, fmt.Errorf("amount %d overflows", v)
	}
	return v * scale, nil
}

func scaleFloat(v float64, exp int) (int64, error) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %v is not a valid non-negative number", v)
	}
	scaled := math.Round(v * math.Pow10(exp))
	if scaled > math.MaxInt64 {
		return 0, fmt.Errorf("amount %v overflows", v)
	}
	return int64(scaled), nil
}

// parseDecimal parses "49", "49.9" or "49.90" into minor units without floating point.
func parseDecimal(s string, exp int) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("amount %q is negative", s)
	}

	if strings.ContainsAny(s, "eE") {
		return parseExponent(s, exp)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && len(frac) > exp {
		// Trailing zeros beyond the minor unit are harmless ("49.900").
		trimmed := strings.TrimRight(frac[exp:], "0")
		if trimmed != "" {
			return 0, fmt.Errorf("amount %q has more than %d decimal places", s, exp)
		}
		frac = frac[:exp]
	}
	frac += strings.Repeat("0", exp-len(frac))

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return n, nil
}

// maxExponent bounds exponent notation; larger amounts overflow int64 anyway.
const maxExponent = 30

// parseExponent parses "4.9e1" exactly into minor units.
func parseExponent(s string, exp int) (int64, error) {
	_, e, _ := strings.Cut(strings.ToLower(s), "e")
	n, err := strconv.Atoi(e)
	if err != nil || n > maxExponent || n < -maxExponent {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	r.Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)))
	if !r.IsInt() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, exp)
	}
	if !r.Num().IsInt64() {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	return r.Num().Int64(), nil
}

// ToString converts various scalar types to string.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric 1, and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	default:
		return false
	}
}
