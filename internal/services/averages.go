package services

import (
	"strings"

	"menu_needs_backend/internal/models"

	"github.com/shopspring/decimal"
)

// AverageIndex maps a period id to the authoritative (latest) serving average of one unit.
type AverageIndex map[int64]models.ServingAverage

// BuildAverageIndex keeps, per period, the row with the greatest calculation date.
// On equal dates the later row in the input wins.
func BuildAverageIndex(rows []models.ServingAverage) AverageIndex {
	index := make(AverageIndex, len(rows))
	for _, row := range rows {
		current, ok := index[row.PeriodoAtendimentoID]
		if !ok || !row.DataCalculo.Before(current.DataCalculo) {
			index[row.PeriodoAtendimentoID] = row
		}
	}
	return index
}

// Lookup returns the numeric average for periodID, or 0 when the period has no rows
// or the stored value is blank or not a number.
func (idx AverageIndex) Lookup(periodID int64) float64 {
	row, ok := idx[periodID]
	if !ok {
		return 0
	}
	return parseLenientDecimal(row.Media).InexactFloat64()
}

// parseLenientDecimal never fails: nil, blank and malformed input all read as zero.
// A decimal comma is accepted.
func parseLenientDecimal(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return decimal.Zero
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
