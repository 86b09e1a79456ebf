package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"menu_needs_backend/internal/models"
)

// DefaultInsertBatchSize bounds the number of rows per INSERT statement.
const DefaultInsertBatchSize = 500

// needColumns are the inserted columns of necessidades_cardapio, in bind order.
var needColumns = []string{
	"cardapio_id", "cardapio_nome", "filial_id", "filial_nome",
	"centro_custo_id", "centro_custo_nome", "contrato_id", "contrato_nome",
	"unidade_id", "unidade_nome", "periodo_atendimento_id", "periodo_atendimento_nome",
	"data", "ordem", "prato_id", "prato_nome",
	"produto_comercial_id", "produto_comercial_nome", "produto_id", "produto_nome",
	"unidade_medida_sigla", "percapta", "media_efetivos", "quantidade",
	"usuario_gerador_id", "data_geracao",
}

// needSortColumns maps the public sort keys to real columns. Unknown keys sort by date.
var needSortColumns = map[string]string{
	"id":                       "nc.id",
	"data":                     "nc.data",
	"ordem":                    "nc.ordem",
	"unidade_nome":             "nc.unidade_nome",
	"periodo_atendimento_nome": "nc.periodo_atendimento_nome",
	"prato_nome":               "nc.prato_nome",
	"produto_nome":             "nc.produto_nome",
	"quantidade":               "nc.quantidade",
	"media_efetivos":           "nc.media_efetivos",
	"percapta":                 "nc.percapta",
	"data_geracao":             "nc.data_geracao",
}

const needSelectColumns = `
    nc.id, nc.cardapio_id, nc.cardapio_nome, nc.filial_id, nc.filial_nome,
    nc.centro_custo_id, nc.centro_custo_nome, nc.contrato_id, nc.contrato_nome,
    nc.unidade_id, nc.unidade_nome, nc.periodo_atendimento_id, nc.periodo_atendimento_nome,
    nc.data, nc.ordem, nc.prato_id, nc.prato_nome,
    nc.produto_comercial_id, nc.produto_comercial_nome, nc.produto_id, nc.produto_nome,
    nc.unidade_medida_sigla, nc.percapta, nc.media_efetivos, nc.quantidade,
    nc.usuario_gerador_id, nc.data_geracao`

// MenuNeedRepository is the persistence gateway for necessidades_cardapio.
// Write methods take an executor so the service can run them in one transaction.
type MenuNeedRepository interface {
	DeleteByScope(ctx context.Context, executor SQLExecutor, scope models.Scope) (int64, error)
	DeleteByID(ctx context.Context, executor SQLExecutor, id int64) (int64, error)
	BulkInsert(ctx context.Context, executor SQLExecutor, records []models.NeedRecord, batchSize int) (int64, error)
	List(ctx context.Context, filters models.NeedFilters, params models.NeedListParams) ([]models.NeedRecord, int, error)
	Export(ctx context.Context, filters models.NeedFilters) ([]models.NeedRecord, error)
}

type menuNeedRepository struct {
	db SQLExecutor
}

// NewMenuNeedRepository creates a new instance of MenuNeedRepository.
func NewMenuNeedRepository(db SQLExecutor) MenuNeedRepository {
	return &menuNeedRepository{db: db}
}

func (r *menuNeedRepository) DeleteByScope(ctx context.Context, executor SQLExecutor, scope models.Scope) (int64, error) {
	query := `DELETE FROM necessidades_cardapio
	          WHERE cardapio_id = $1 AND filial_id = $2 AND centro_custo_id = $3 AND contrato_id = $4`
	result, err := executor.ExecContext(ctx, query, scope.CardapioID, scope.FilialID, scope.CentroCustoID, scope.ContratoID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting needs for menu %d: %v", ErrDatabaseError, scope.CardapioID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for scope delete: %v", ErrDatabaseError, err)
	}
	return rowsAffected, nil
}

func (r *menuNeedRepository) DeleteByID(ctx context.Context, executor SQLExecutor, id int64) (int64, error) {
	result, err := executor.ExecContext(ctx, `DELETE FROM necessidades_cardapio WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting need ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting need ID %d: %v", ErrDatabaseError, id, err)
	}
	return rowsAffected, nil
}

// BulkInsert writes records in chunks of batchSize; the first failing chunk aborts the call.
func (r *menuNeedRepository) BulkInsert(ctx context.Context, executor SQLExecutor, records []models.NeedRecord, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}
	var inserted int64
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		query, args := buildInsertStatement(records[start:end])
		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("%w: inserting needs batch %d-%d: %v", ErrDatabaseError, start, end, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("%w: getting rows affected for needs batch: %v", ErrDatabaseError, err)
		}
		inserted += n
	}
	return inserted, nil
}

func buildInsertStatement(batch []models.NeedRecord) (string, []interface{}) {
	var qb strings.Builder
	qb.WriteString("INSERT INTO necessidades_cardapio (")
	qb.WriteString(strings.Join(needColumns, ", "))
	qb.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(batch)*len(needColumns))
	argCounter := 1
	for i, rec := range batch {
		if i > 0 {
			qb.WriteString(", ")
		}
		qb.WriteString("(")
		for c := range needColumns {
			if c > 0 {
				qb.WriteString(", ")
			}
			fmt.Fprintf(&qb, "$%d", argCounter)
			argCounter++
		}
		qb.WriteString(")")
		args = append(args,
			rec.CardapioID, rec.CardapioNome, rec.FilialID, rec.FilialNome,
			rec.CentroCustoID, rec.CentroCustoNome, rec.ContratoID, rec.ContratoNome,
			rec.UnidadeID, rec.UnidadeNome, rec.PeriodoAtendimentoID, rec.PeriodoAtendimentoNome,
			rec.Data, rec.Ordem, rec.PratoID, rec.PratoNome,
			rec.ProdutoComercialID, rec.ProdutoComercialNome, rec.ProdutoID, rec.ProdutoNome,
			rec.UnidadeMedidaSigla, rec.Percapta, rec.MediaEfetivos, rec.Quantidade,
			rec.UsuarioGeradorID, rec.DataGeracao,
		)
	}
	return qb.String(), args
}

func (r *menuNeedRepository) List(ctx context.Context, filters models.NeedFilters, params models.NeedListParams) ([]models.NeedRecord, int, error) {
	records := []models.NeedRecord{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + needSelectColumns + ", COUNT(*) OVER() AS total_count FROM necessidades_cardapio nc")

	conditions, args := buildNeedConditions(filters)
	argCounter := len(args) + 1
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	column, direction := resolveNeedSort(params.Sort, params.Order)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, nc.id %s", column, direction, direction))

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1))
	args = append(args, params.Limit, (params.Page-1)*params.Limit)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying needs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanNeedRecord(rows, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating needs: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

// Export returns every matching row ordered for reporting: date, unit, period, display order.
func (r *menuNeedRepository) Export(ctx context.Context, filters models.NeedFilters) ([]models.NeedRecord, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + needSelectColumns + " FROM necessidades_cardapio nc")

	conditions, args := buildNeedConditions(filters)
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY nc.data, nc.unidade_nome, nc.periodo_atendimento_nome, nc.ordem, nc.id")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying needs for export: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	records := []models.NeedRecord{}
	for rows.Next() {
		rec, err := scanNeedRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating needs for export: %v", ErrDatabaseError, err)
	}
	return records, nil
}

// scanNeedRecord reads needSelectColumns plus any trailing destinations (e.g. total_count).
func scanNeedRecord(s scanner, extra ...interface{}) (models.NeedRecord, error) {
	var rec models.NeedRecord
	dest := []interface{}{
		&rec.ID, &rec.CardapioID, &rec.CardapioNome, &rec.FilialID, &rec.FilialNome,
		&rec.CentroCustoID, &rec.CentroCustoNome, &rec.ContratoID, &rec.ContratoNome,
		&rec.UnidadeID, &rec.UnidadeNome, &rec.PeriodoAtendimentoID, &rec.PeriodoAtendimentoNome,
		&rec.Data, &rec.Ordem, &rec.PratoID, &rec.PratoNome,
		&rec.ProdutoComercialID, &rec.ProdutoComercialNome, &rec.ProdutoID, &rec.ProdutoNome,
		&rec.UnidadeMedidaSigla, &rec.Percapta, &rec.MediaEfetivos, &rec.Quantidade,
		&rec.UsuarioGeradorID, &rec.DataGeracao,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return rec, fmt.Errorf("%w: scanning need: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

// buildNeedConditions turns the allow-listed filters into AND-ed placeholders starting at $1.
func buildNeedConditions(filters models.NeedFilters) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCounter := 1

	equals := []struct {
		column string
		value  *int64
	}{
		{"nc.cardapio_id", filters.CardapioID},
		{"nc.filial_id", filters.FilialID},
		{"nc.centro_custo_id", filters.CentroCustoID},
		{"nc.contrato_id", filters.ContratoID},
		{"nc.produto_comercial_id", filters.ProdutoComercialID},
		{"nc.unidade_id", filters.UnidadeID},
		{"nc.periodo_atendimento_id", filters.PeriodoAtendimentoID},
		{"nc.produto_id", filters.ProdutoID},
	}
	for _, eq := range equals {
		if eq.value == nil {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", eq.column, argCounter))
		args = append(args, *eq.value)
		argCounter++
	}

	if filters.DataInicio != nil {
		conditions = append(conditions, fmt.Sprintf("nc.data >= $%d", argCounter))
		args = append(args, *filters.DataInicio)
		argCounter++
	}
	if filters.DataFim != nil {
		end := time.Date(filters.DataFim.Year(), filters.DataFim.Month(), filters.DataFim.Day(), 0, 0, 0, 0, filters.DataFim.Location()).AddDate(0, 0, 1)
		conditions = append(conditions, fmt.Sprintf("nc.data < $%d", argCounter))
		args = append(args, end)
	}
	return conditions, args
}

func resolveNeedSort(sort, order string) (string, string) {
	column, ok := needSortColumns[strings.ToLower(strings.TrimSpace(sort))]
	if !ok {
		column = needSortColumns["data"]
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		direction = "DESC"
	}
	return column, direction
}
