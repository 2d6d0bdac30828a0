package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"signalbridge/src/model"
)

// unitsPerLot converts a unit count into standard lots.
var unitsPerLot = decimal.NewFromInt(100000)

var (
	forexSymbol  = regexp.MustCompile(`\b[A-Z]{6}\b`)
	cryptoSymbol = regexp.MustCompile(`\b[A-Z]{3,4}/[A-Z]{3,4}\b`)
	indexSymbol  = regexp.MustCompile(`\b[A-Z]{2,5}INDEX\b`)

	numberToken = regexp.MustCompile(`\b\d+\.?\d*\b`)
	lotVolume   = regexp.MustCompile(`(\d+\.?\d*)\s*lot`)
	unitVolume  = regexp.MustCompile(`(\d+)\s*unit`)
)

// extractSymbol tries forex pairs, then crypto pairs, then indices.
func extractSymbol(message string) string {
	upper := strings.ToUpper(message)
	for _, re := range []*regexp.Regexp{forexSymbol, cryptoSymbol, indexSymbol} {
		if m := re.FindString(upper); m != "" {
			return m
		}
	}
	return ""
}

// extractPrices returns every number in the message in text order.
func extractPrices(message string) []float64 {
	var prices []float64
	for _, tok := range numberToken.FindAllString(message, -1) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		prices = append(prices, v)
	}
	return prices
}

// extractVolume reads "0.1 lot" verbatim or converts "1000 units" to lots.
// A lot quantity wins when both are present.
func extractVolume(message string) *float64 {
	lower := strings.ToLower(message)

	if m := lotVolume.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return model.Float64Ptr(v)
		}
	}

	if m := unitVolume.FindStringSubmatch(lower); m != nil {
		units, err := decimal.NewFromString(m[1])
		if err == nil {
			lots, _ := units.Div(unitsPerLot).Float64()
			return model.Float64Ptr(lots)
		}
	}

	return nil
}
