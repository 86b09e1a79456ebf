package models

import "time"

// Scope identifies one regenerable batch of needs.
type Scope struct {
	CardapioID    int64 `json:"cardapio_id" binding:"required,gt=0"`
	FilialID      int64 `json:"filial_id" binding:"required,gt=0"`
	CentroCustoID int64 `json:"centro_custo_id" binding:"required,gt=0"`
	ContratoID    int64 `json:"contrato_id" binding:"required,gt=0"`
}

// Valid reports whether every key of the scope is set.
func (s Scope) Valid() bool {
	return s.CardapioID > 0 && s.FilialID > 0 && s.CentroCustoID > 0 && s.ContratoID > 0
}

// NeedRecord is one persisted line of necessidades_cardapio. Names are copied at
// generation time; Quantidade = round(MediaEfetivos * Percapta, 3).
type NeedRecord struct {
	ID                     int64     `json:"id,omitempty" db:"id"`
	CardapioID             int64     `json:"cardapio_id" db:"cardapio_id"`
	CardapioNome           string    `json:"cardapio_nome" db:"cardapio_nome"`
	FilialID               int64     `json:"filial_id" db:"filial_id"`
	FilialNome             string    `json:"filial_nome" db:"filial_nome"`
	CentroCustoID          int64     `json:"centro_custo_id" db:"centro_custo_id"`
	CentroCustoNome        string    `json:"centro_custo_nome" db:"centro_custo_nome"`
	ContratoID             int64     `json:"contrato_id" db:"contrato_id"`
	ContratoNome           string    `json:"contrato_nome" db:"contrato_nome"`
	UnidadeID              int64     `json:"unidade_id" db:"unidade_id"`
	UnidadeNome            string    `json:"unidade_nome" db:"unidade_nome"`
	PeriodoAtendimentoID   int64     `json:"periodo_atendimento_id" db:"periodo_atendimento_id"`
	PeriodoAtendimentoNome string    `json:"periodo_atendimento_nome" db:"periodo_atendimento_nome"`
	Data                   time.Time `json:"data" db:"data"`
	Ordem                  int       `json:"ordem" db:"ordem"`
	PratoID                int64     `json:"prato_id" db:"prato_id"`
	PratoNome              string    `json:"prato_nome" db:"prato_nome"`
	ProdutoComercialID     int64     `json:"produto_comercial_id" db:"produto_comercial_id"`
	ProdutoComercialNome   string    `json:"produto_comercial_nome" db:"produto_comercial_nome"`
	ProdutoID              int64     `json:"produto_id" db:"produto_id"`
	ProdutoNome            string    `json:"produto_nome" db:"produto_nome"`
	UnidadeMedidaSigla     string    `json:"unidade_medida_sigla" db:"unidade_medida_sigla"`
	Percapta               float64   `json:"percapta" db:"percapta"`
	MediaEfetivos          float64   `json:"media_efetivos" db:"media_efetivos"`
	Quantidade             float64   `json:"quantidade" db:"quantidade"`
	UsuarioGeradorID       *int64    `json:"usuario_gerador_id,omitempty" db:"usuario_gerador_id"`
	DataGeracao            time.Time `json:"data_geracao,omitempty" db:"data_geracao"`
}

// NeedSummary aggregates one generation run.
type NeedSummary struct {
	TotalRegistros      int     `json:"total_registros"`
	TotalUnidades       int     `json:"total_unidades"`
	TotalPeriodos       int     `json:"total_periodos"`
	TotalPratos         int     `json:"total_pratos"`
	TotalProdutos       int     `json:"total_produtos"`
	QuantidadeTotal     float64 `json:"quantidade_total"`
	UnidadesProcessadas int     `json:"unidades_processadas"`
}

// NeedPreview is returned by a dry run.
type NeedPreview struct {
	Registros           []NeedRecord `json:"registros"`
	Resumo              NeedSummary  `json:"resumo"`
	UnidadesProcessadas int          `json:"unidades_processadas"`
}

// NeedGeneration is returned by a committed run.
type NeedGeneration struct {
	RegistrosInseridos  int64       `json:"registros_inseridos"`
	UnidadesProcessadas int         `json:"unidades_processadas"`
	Resumo              NeedSummary `json:"resumo"`
}

// NeedFilters are the allow-listed equality predicates plus an inclusive date range.
type NeedFilters struct {
	CardapioID           *int64
	FilialID             *int64
	CentroCustoID        *int64
	ContratoID           *int64
	ProdutoComercialID   *int64
	UnidadeID            *int64
	PeriodoAtendimentoID *int64
	ProdutoID            *int64
	DataInicio           *time.Time
	DataFim              *time.Time
}

// NeedListParams carries paging and ordering for List.
type NeedListParams struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NeedPage is a page of need records.
type NeedPage struct {
	Rows       []NeedRecord `json:"rows"`
	Pagination Pagination   `json:"pagination"`
}

// NeedExportRow is the report-ready, pt-BR labelled shape of a need record.
type NeedExportRow struct {
	Data               string  `json:"Data"`
	Cardapio           string  `json:"Cardápio"`
	Filial             string  `json:"Filial"`
	CentroCusto        string  `json:"Centro de Custo"`
	Contrato           string  `json:"Contrato"`
	Unidade            string  `json:"Unidade"`
	PeriodoAtendimento string  `json:"Período de Atendimento"`
	Ordem              int     `json:"Ordem"`
	Prato              string  `json:"Prato"`
	ProdutoComercial   string  `json:"Produto Comercial"`
	CodigoProduto      int64   `json:"Código do Produto"`
	Produto            string  `json:"Produto"`
	UnidadeMedida      string  `json:"Unidade de Medida"`
	Percapta           float64 `json:"Per Capita"`
	MediaEfetivos      float64 `json:"Média de Efetivos"`
	Quantidade         float64 `json:"Quantidade"`
}

// NeedExportHeaders lists the export labels in column order.
var NeedExportHeaders = []string{
	"Data", "Cardápio", "Filial", "Centro de Custo", "Contrato", "Unidade",
	"Período de Atendimento", "Ordem", "Prato", "Produto Comercial", "Código do Produto",
	"Produto", "Unidade de Medida", "Per Capita", "Média de Efetivos", "Quantidade",
}

// Values returns the row in NeedExportHeaders order.
func (r NeedExportRow) Values() []interface{} {
	return []interface{}{
		r.Data, r.Cardapio, r.Filial, r.CentroCusto, r.Contrato, r.Unidade,
		r.PeriodoAtendimento, r.Ordem, r.Prato, r.ProdutoComercial, r.CodigoProduto,
		r.Produto, r.UnidadeMedida, r.Percapta, r.MediaEfetivos, r.Quantidade,
	}
}
