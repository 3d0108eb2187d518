package currency

import (
	"fmt"
	"math"
	"strings"
)

// Info describes a supported currency.
type Info struct {
	Code   string
	Symbol string
	Name   string
}

// DefaultCode is used when a currency code cannot be resolved.
const DefaultCode = "PHP"

var currencies = map[string]Info{
	"PHP": {Code: "PHP", Symbol: "₱", Name: "Philippine Peso"},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	"MXN": {Code: "MXN", Symbol: "$", Name: "Mexican Peso"},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real"},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won"},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht"},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar"},
}

// Lookup resolves a currency code, case-insensitively. Unknown or empty codes
// resolve to the default currency.
func Lookup(code string) Info {
	if code == "" {
		return currencies[DefaultCode]
	}
	if info, ok := currencies[strings.ToUpper(code)]; ok {
		return info
	}
	return currencies[DefaultCode]
}

// Format renders an amount with the symbol of the given currency.
func Format(amount float64, code string) string {
	info := Lookup(code)
	return fmt.Sprintf("%s%.2f", info.Symbol, math.Abs(amount))
}

// Available returns all supported currencies.
func Available() []Info {
	out := make([]Info, 0, len(currencies))
	for _, info := range currencies {
		out = append(out, info)
	}
	return out
}
