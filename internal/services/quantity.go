package services

import (
	"time"

	"menu_needs_backend/internal/models"

	"github.com/shopspring/decimal"
)

// quantityPlaces is the rounding precision of a need quantity.
const quantityPlaces = 3

// CalculateQuantity returns round(average * perCapita, 3). A missing or blank perCapita counts as 0.
func CalculateQuantity(average float64, perCapita *string) float64 {
	return decimal.NewFromFloat(average).
		Mul(parseLenientDecimal(perCapita)).
		Round(quantityPlaces).
		InexactFloat64()
}

// RecordContext carries the denormalized scope names of one generation run.
type RecordContext struct {
	Scope           models.Scope
	CardapioNome    string
	FilialNome      string
	CentroCustoNome string
	ContratoNome    string
	UsuarioID       *int64
	GeneratedAt     time.Time
}

// AssembleRecord builds one need line. Absent commercial products come through as 0 / "".
func AssembleRecord(rc RecordContext, unit models.Unit, period models.AttendancePeriod, dish models.ScheduledDish, ing models.DishIngredient, average float64) models.NeedRecord {
	return models.NeedRecord{
		CardapioID:             rc.Scope.CardapioID,
		CardapioNome:           rc.CardapioNome,
		FilialID:               rc.Scope.FilialID,
		FilialNome:             rc.FilialNome,
		CentroCustoID:          rc.Scope.CentroCustoID,
		CentroCustoNome:        rc.CentroCustoNome,
		ContratoID:             rc.Scope.ContratoID,
		ContratoNome:           rc.ContratoNome,
		UnidadeID:              unit.ID,
		UnidadeNome:            unit.Nome,
		PeriodoAtendimentoID:   period.ID,
		PeriodoAtendimentoNome: period.Nome,
		Data:                   dish.Data,
		Ordem:                  dish.Ordem,
		PratoID:                dish.PratoID,
		PratoNome:              dish.PratoNome,
		ProdutoComercialID:     dish.ProdutoComercialID,
		ProdutoComercialNome:   dish.ProdutoComercialNome,
		ProdutoID:              ing.ProdutoOrigemID,
		ProdutoNome:            ing.ProdutoOrigemNome,
		UnidadeMedidaSigla:     ing.UnidadeMedidaSigla,
		Percapta:               parseLenientDecimal(ing.Percapta).InexactFloat64(),
		MediaEfetivos:          average,
		Quantidade:             CalculateQuantity(average, ing.Percapta),
		UsuarioGeradorID:       rc.UsuarioID,
		DataGeracao:            rc.GeneratedAt,
	}
}

// Summarize counts distinct units, periods, dishes and products and sums the quantities.
// The sum itself is not rounded.
func Summarize(records []models.NeedRecord, unitsProcessed int) models.NeedSummary {
	units := map[int64]struct{}{}
	periods := map[int64]struct{}{}
	dishes := map[int64]struct{}{}
	products := map[int64]struct{}{}
	var total float64
	for _, r := range records {
		units[r.UnidadeID] = struct{}{}
		periods[r.PeriodoAtendimentoID] = struct{}{}
		dishes[r.PratoID] = struct{}{}
		products[r.ProdutoID] = struct{}{}
		total += r.Quantidade
	}
	return models.NeedSummary{
		TotalRegistros:      len(records),
		TotalUnidades:       len(units),
		TotalPeriodos:       len(periods),
		TotalPratos:         len(dishes),
		TotalProdutos:       len(products),
		QuantidadeTotal:     total,
		UnidadesProcessadas: unitsProcessed,
	}
}
