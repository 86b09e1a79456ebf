package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"menu_needs_backend/internal/models"

	"github.com/lib/pq"
)

const statusAtivo = "ativo"

// CatalogRepository is the read-only view over menus, units, periods, dishes and ingredients.
// Lookups are batched by id lists so one generation run issues a fixed number of queries.
type CatalogRepository interface {
	GetMenuByID(ctx context.Context, menuID int64) (*models.Menu, error)
	GetUnitsInScope(ctx context.Context, scope models.Scope) ([]models.Unit, error)
	GetActivePeriodsByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.AttendancePeriod, error)
	GetEnabledPeriodIDs(ctx context.Context, menuID int64) (map[int64]bool, error)
	GetServingAveragesByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.ServingAverage, error)
	GetScheduledDishesByPeriod(ctx context.Context, menuID int64, periodIDs []int64) (map[int64][]models.ScheduledDish, error)
	GetDishIngredients(ctx context.Context, dishIDs []int64, costCenterID int64) (map[int64][]models.DishIngredient, error)
	GetBranchName(ctx context.Context, menuID, branchID int64) (string, error)
	GetCostCenterName(ctx context.Context, menuID, costCenterID int64) (string, error)
	GetContractName(ctx context.Context, menuID, contractID int64) (string, error)
}

type catalogRepository struct {
	db SQLExecutor
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db SQLExecutor) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetMenuByID(ctx context.Context, menuID int64) (*models.Menu, error) {
	menu := &models.Menu{}
	query := `SELECT id, nome, COALESCE(mes_referencia, 0), COALESCE(ano_referencia, 0)
	          FROM cardapios
	          WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, menuID).Scan(&menu.ID, &menu.Nome, &menu.MesReferencia, &menu.AnoReferencia)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu by ID %d: %v", ErrDatabaseError, menuID, err)
	}
	return menu, nil
}

// GetUnitsInScope returns units for which all four links are present and active.
func (r *catalogRepository) GetUnitsInScope(ctx context.Context, scope models.Scope) ([]models.Unit, error) {
	query := `
        SELECT DISTINCT u.id, u.nome, u.filial_id, u.centro_custo_id
        FROM unidades u
        INNER JOIN contrato_unidades cu
            ON cu.unidade_id = u.id AND cu.contrato_id = $1 AND cu.status = $5
        INNER JOIN contrato_cardapios cc
            ON cc.contrato_id = cu.contrato_id AND cc.cardapio_id = $4 AND cc.status = $5
        INNER JOIN cardapio_filiais cf
            ON cf.cardapio_id = cc.cardapio_id AND cf.filial_id = $2 AND cf.status = $5
        INNER JOIN cardapio_centros_custo ccc
            ON ccc.cardapio_id = cc.cardapio_id AND ccc.centro_custo_id = $3 AND ccc.status = $5
        WHERE u.filial_id = $2 AND u.centro_custo_id = $3 AND u.status = $5
        ORDER BY u.nome, u.id`

	rows, err := r.db.QueryContext(ctx, query, scope.ContratoID, scope.FilialID, scope.CentroCustoID, scope.CardapioID, statusAtivo)
	if err != nil {
		return nil, fmt.Errorf("%w: querying units in scope: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Nome, &u.FilialID, &u.CentroCustoID); err != nil {
			return nil, fmt.Errorf("%w: scanning unit: %v", ErrDatabaseError, err)
		}
		units = append(units, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating units: %v", ErrDatabaseError, err)
	}
	return units, nil
}

// GetActivePeriodsByUnit only returns periods whose unit link and period record are both active.
func (r *catalogRepository) GetActivePeriodsByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.AttendancePeriod, error) {
	result := make(map[int64][]models.AttendancePeriod, len(unitIDs))
	if len(unitIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT upa.unidade_id, p.id, p.nome
        FROM unidade_periodos_atendimento upa
        INNER JOIN periodos_atendimento p ON p.id = upa.periodo_atendimento_id
        WHERE upa.unidade_id = ANY($1) AND upa.status = $2 AND p.status = $2
        ORDER BY upa.unidade_id, p.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(unitIDs), statusAtivo)
	if err != nil {
		return nil, fmt.Errorf("%w: querying unit periods: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var unitID int64
		var p models.AttendancePeriod
		if err := rows.Scan(&unitID, &p.ID, &p.Nome); err != nil {
			return nil, fmt.Errorf("%w: scanning unit period: %v", ErrDatabaseError, err)
		}
		result[unitID] = append(result[unitID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating unit periods: %v", ErrDatabaseError, err)
	}
	return result, nil
}

// GetEnabledPeriodIDs returns the periods explicitly enabled on the menu. A period absent from
// the result is not enabled.
func (r *catalogRepository) GetEnabledPeriodIDs(ctx context.Context, menuID int64) (map[int64]bool, error) {
	query := `SELECT periodo_atendimento_id FROM cardapio_periodos_atendimento WHERE cardapio_id = $1`
	rows, err := r.db.QueryContext(ctx, query, menuID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying menu periods for menu %d: %v", ErrDatabaseError, menuID, err)
	}
	defer rows.Close()

	enabled := map[int64]bool{}
	for rows.Next() {
		var periodID int64
		if err := rows.Scan(&periodID); err != nil {
			return nil, fmt.Errorf("%w: scanning menu period: %v", ErrDatabaseError, err)
		}
		enabled[periodID] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu periods: %v", ErrDatabaseError, err)
	}
	return enabled, nil
}

// GetServingAveragesByUnit returns the full history of averages; resolving the latest is the caller's job.
func (r *catalogRepository) GetServingAveragesByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.ServingAverage, error) {
	result := make(map[int64][]models.ServingAverage, len(unitIDs))
	if len(unitIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT unidade_id, periodo_atendimento_id, media::text, data_calculo
        FROM medias_efetivos
        WHERE unidade_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(unitIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying serving averages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var avg models.ServingAverage
		var media sql.NullString
		if err := rows.Scan(&avg.UnidadeID, &avg.PeriodoAtendimentoID, &media, &avg.DataCalculo); err != nil {
			return nil, fmt.Errorf("%w: scanning serving average: %v", ErrDatabaseError, err)
		}
		if media.Valid {
			m := media.String
			avg.Media = &m
		}
		result[avg.UnidadeID] = append(result[avg.UnidadeID], avg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating serving averages: %v", ErrDatabaseError, err)
	}
	return result, nil
}

// GetScheduledDishesByPeriod returns dishes per period ordered by (data, ordem). The commercial
// product name comes from the menu-scoped label table and is "" when missing.
func (r *catalogRepository) GetScheduledDishesByPeriod(ctx context.Context, menuID int64, periodIDs []int64) (map[int64][]models.ScheduledDish, error) {
	result := make(map[int64][]models.ScheduledDish, len(periodIDs))
	if len(periodIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT cr.id, cr.periodo_atendimento_id, cr.data, COALESCE(cr.ordem, 0),
               cr.prato_id, COALESCE(pr.nome, ''),
               COALESCE(cr.produto_comercial_id, 0), COALESCE(cpc.nome, '')
        FROM cardapio_refeicoes cr
        LEFT JOIN pratos pr ON pr.id = cr.prato_id
        LEFT JOIN cardapio_produtos_comerciais cpc
            ON cpc.cardapio_id = cr.cardapio_id AND cpc.produto_comercial_id = cr.produto_comercial_id
        WHERE cr.cardapio_id = $1 AND cr.periodo_atendimento_id = ANY($2)
        ORDER BY cr.data, cr.ordem, cr.id`

	rows, err := r.db.QueryContext(ctx, query, menuID, pq.Array(periodIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying scheduled dishes for menu %d: %v", ErrDatabaseError, menuID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.ScheduledDish
		if err := rows.Scan(&d.ID, &d.PeriodoAtendimentoID, &d.Data, &d.Ordem,
			&d.PratoID, &d.PratoNome, &d.ProdutoComercialID, &d.ProdutoComercialNome); err != nil {
			return nil, fmt.Errorf("%w: scanning scheduled dish: %v", ErrDatabaseError, err)
		}
		result[d.PeriodoAtendimentoID] = append(result[d.PeriodoAtendimentoID], d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating scheduled dishes: %v", ErrDatabaseError, err)
	}
	return result, nil
}

// GetDishIngredients returns ingredient lists for the given cost center. A dish without rows for
// that cost center is simply absent from the map.
func (r *catalogRepository) GetDishIngredients(ctx context.Context, dishIDs []int64, costCenterID int64) (map[int64][]models.DishIngredient, error) {
	result := make(map[int64][]models.DishIngredient, len(dishIDs))
	if len(dishIDs) == 0 {
		return result, nil
	}
	query := `
        SELECT prato_id, produto_origem_id, COALESCE(produto_origem_nome, ''),
               COALESCE(unidade_medida_sigla, ''), percapta::text
        FROM prato_ingredientes
        WHERE prato_id = ANY($1) AND centro_custo_id = $2
        ORDER BY prato_id, id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(dishIDs), costCenterID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying dish ingredients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing models.DishIngredient
		var percapta sql.NullString
		if err := rows.Scan(&ing.PratoID, &ing.ProdutoOrigemID, &ing.ProdutoOrigemNome, &ing.UnidadeMedidaSigla, &percapta); err != nil {
			return nil, fmt.Errorf("%w: scanning dish ingredient: %v", ErrDatabaseError, err)
		}
		if percapta.Valid {
			p := percapta.String
			ing.Percapta = &p
		}
		result[ing.PratoID] = append(result[ing.PratoID], ing)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating dish ingredients: %v", ErrDatabaseError, err)
	}
	return result, nil
}

func (r *catalogRepository) GetBranchName(ctx context.Context, menuID, branchID int64) (string, error) {
	return r.lookupName(ctx, "branch", `
        SELECT f.nome FROM cardapio_filiais cf
        INNER JOIN filiais f ON f.id = cf.filial_id
        WHERE cf.cardapio_id = $1 AND cf.filial_id = $2
        LIMIT 1`, menuID, branchID)
}

func (r *catalogRepository) GetCostCenterName(ctx context.Context, menuID, costCenterID int64) (string, error) {
	return r.lookupName(ctx, "cost center", `
        SELECT c.nome FROM cardapio_centros_custo ccc
        INNER JOIN centros_custo c ON c.id = ccc.centro_custo_id
        WHERE ccc.cardapio_id = $1 AND ccc.centro_custo_id = $2
        LIMIT 1`, menuID, costCenterID)
}

func (r *catalogRepository) GetContractName(ctx context.Context, menuID, contractID int64) (string, error) {
	return r.lookupName(ctx, "contract", `
        SELECT ct.nome FROM contrato_cardapios cc
        INNER JOIN contratos ct ON ct.id = cc.contrato_id
        WHERE cc.cardapio_id = $1 AND cc.contrato_id = $2
        LIMIT 1`, menuID, contractID)
}

// lookupName returns "" when the row is missing; names are denormalized labels, not requirements.
func (r *catalogRepository) lookupName(ctx context.Context, entity, query string, menuID, id int64) (string, error) {
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, query, menuID, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: getting %s name %d for menu %d: %v", ErrDatabaseError, entity, id, menuID, err)
	}
	return name.String, nil
}
