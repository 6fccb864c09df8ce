package money

import "strings"

// zeroDecimalCurrencies are ISO 4217 currencies without minor units.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true,
	"CLP": true,
	"DJF": true,
	"GNF": true,
	"ISK": true,
	"JPY": true,
	"KMF": true,
	"KRW": true,
	"PYG": true,
	"RWF": true,
	"UGX": true,
	"VND": true,
	"VUV": true,
	"XAF": true,
	"XOF": true,
	"XPF": true,
}

// DecimalPlaces returns the number of minor-unit digits for a currency.
func DecimalPlaces(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		return 0
	}
	return 2
}
