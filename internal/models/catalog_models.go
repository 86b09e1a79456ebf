package models

import "time"

// Menu (cardapio) is the immutable reference of one planning cycle.
type Menu struct {
	ID            int64  `json:"id" db:"id"`
	Nome          string `json:"nome" db:"nome"`
	MesReferencia int    `json:"mes_referencia" db:"mes_referencia"`
	AnoReferencia int    `json:"ano_referencia" db:"ano_referencia"`
}

// Unit is a serving location resolved inside a scope.
type Unit struct {
	ID            int64  `json:"id" db:"id"`
	Nome          string `json:"nome" db:"nome"`
	FilialID      int64  `json:"filial_id" db:"filial_id"`
	CentroCustoID int64  `json:"centro_custo_id" db:"centro_custo_id"`
}

// AttendancePeriod is a meal/service window (e.g. lunch).
type AttendancePeriod struct {
	ID   int64  `json:"id" db:"id"`
	Nome string `json:"nome" db:"nome"`
}

// ServingAverage is one calculated average for a unit and period at a calculation date.
// Media holds the raw stored value; blank or non-numeric values count as zero.
type ServingAverage struct {
	UnidadeID            int64     `json:"unidade_id" db:"unidade_id"`
	PeriodoAtendimentoID int64     `json:"periodo_atendimento_id" db:"periodo_atendimento_id"`
	Media                *string   `json:"media" db:"media"`
	DataCalculo          time.Time `json:"data_calculo" db:"data_calculo"`
}

// ScheduledDish is a dish placed on the menu for a period and date.
type ScheduledDish struct {
	ID                   int64     `json:"id" db:"id"`
	PeriodoAtendimentoID int64     `json:"periodo_atendimento_id" db:"periodo_atendimento_id"`
	Data                 time.Time `json:"data" db:"data"`
	Ordem                int       `json:"ordem" db:"ordem"`
	PratoID              int64     `json:"prato_id" db:"prato_id"`
	PratoNome            string    `json:"prato_nome" db:"prato_nome"`
	ProdutoComercialID   int64     `json:"produto_comercial_id" db:"produto_comercial_id"`
	ProdutoComercialNome string    `json:"produto_comercial_nome" db:"produto_comercial_nome"`
}

// DishIngredient is one ingredient line of a dish for a given cost center.
// Percapta keeps the stored text; blank means zero.
type DishIngredient struct {
	PratoID            int64   `json:"prato_id" db:"prato_id"`
	ProdutoOrigemID    int64   `json:"produto_origem_id" db:"produto_origem_id"`
	ProdutoOrigemNome  string  `json:"produto_origem_nome" db:"produto_origem_nome"`
	UnidadeMedidaSigla string  `json:"unidade_medida_sigla" db:"unidade_medida_sigla"`
	Percapta           *string `json:"percapta" db:"percapta"`
}
