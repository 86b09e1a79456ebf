package services

import (
	"testing"
	"time"

	"menu_needs_backend/internal/models"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildAverageIndexKeepsLatest(t *testing.T) {
	rows := []models.ServingAverage{
		{UnidadeID: 1, PeriodoAtendimentoID: 10, Media: strPtr("100"), DataCalculo: day(2024, 3, 1)},
		{UnidadeID: 1, PeriodoAtendimentoID: 10, Media: strPtr("120.0"), DataCalculo: day(2024, 4, 1)},
		{UnidadeID: 1, PeriodoAtendimentoID: 10, Media: strPtr("90"), DataCalculo: day(2024, 2, 1)},
		{UnidadeID: 1, PeriodoAtendimentoID: 20, Media: strPtr("45.5"), DataCalculo: day(2024, 1, 15)},
	}

	idx := BuildAverageIndex(rows)

	if got := idx.Lookup(10); got != 120 {
		t.Errorf("period 10: expected latest average 120, got %v", got)
	}
	if got := idx.Lookup(20); got != 45.5 {
		t.Errorf("period 20: expected 45.5, got %v", got)
	}
	if got := idx.Lookup(30); got != 0 {
		t.Errorf("period without rows: expected 0, got %v", got)
	}
}

func TestBuildAverageIndexTieIsDeterministic(t *testing.T) {
	rows := []models.ServingAverage{
		{PeriodoAtendimentoID: 10, Media: strPtr("10"), DataCalculo: day(2024, 4, 1)},
		{PeriodoAtendimentoID: 10, Media: strPtr("20"), DataCalculo: day(2024, 4, 1)},
	}
	for i := 0; i < 5; i++ {
		if got := BuildAverageIndex(rows).Lookup(10); got != 20 {
			t.Fatalf("expected last seen row to win the tie, got %v", got)
		}
	}
}

func TestLookupCoercesInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		media *string
		want  float64
	}{
		{"null", nil, 0},
		{"blank", strPtr("   "), 0},
		{"non numeric", strPtr("n/a"), 0},
		{"decimal comma", strPtr("87,5"), 87.5},
		{"plain", strPtr("64"), 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := BuildAverageIndex([]models.ServingAverage{{PeriodoAtendimentoID: 1, Media: tt.media, DataCalculo: day(2024, 1, 1)}})
			if got := idx.Lookup(1); got != tt.want {
				t.Errorf("Lookup() = %v, want %v", got, tt.want)
			}
		})
	}
}
