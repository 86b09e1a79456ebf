package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"menu_needs_backend/internal/models"
	"menu_needs_backend/internal/repositories"
	"menu_needs_backend/pkg/utils"
)

var (
	ErrMenuNotFound    = errors.New("menu not found")
	ErrNoUnitsInScope  = errors.New("no units found for the requested contract, branch, cost center and menu")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorage         = errors.New("storage failure")
)

const (
	DefaultListLimit = 50
	exportDateLayout = "02/01/2006"
)

// MenuNeedService generates, lists, exports and deletes menu needs.
type MenuNeedService interface {
	Preview(ctx context.Context, scope models.Scope) (*models.NeedPreview, error)
	Generate(ctx context.Context, scope models.Scope, actingUserID int64) (*models.NeedGeneration, error)
	List(ctx context.Context, filters models.NeedFilters, params models.NeedListParams) (*models.NeedPage, error)
	Export(ctx context.Context, filters models.NeedFilters) ([]models.NeedExportRow, error)
	Delete(ctx context.Context, id *int64, scope *models.Scope) (int64, error)
}

// MenuNeedOptions tunes batching, paging and the clock.
type MenuNeedOptions struct {
	InsertBatchSize int
	ListMaxLimit    int
	Now             func() time.Time
}

type menuNeedService struct {
	catalog repositories.CatalogRepository
	needs   repositories.MenuNeedRepository
	uow     repositories.UnitOfWork
	opts    MenuNeedOptions
}

// NewMenuNeedService creates a new instance of MenuNeedService.
func NewMenuNeedService(
	catalog repositories.CatalogRepository,
	needs repositories.MenuNeedRepository,
	uow repositories.UnitOfWork,
	opts MenuNeedOptions,
) MenuNeedService {
	if opts.InsertBatchSize <= 0 {
		opts.InsertBatchSize = repositories.DefaultInsertBatchSize
	}
	if opts.ListMaxLimit <= 0 {
		opts.ListMaxLimit = 500
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &menuNeedService{catalog: catalog, needs: needs, uow: uow, opts: opts}
}

// resolution is the outcome of walking units -> periods -> dishes -> ingredients.
type resolution struct {
	records        []models.NeedRecord
	unitsProcessed int
}

func (s *menuNeedService) Preview(ctx context.Context, scope models.Scope) (*models.NeedPreview, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: cardapio_id, filial_id, centro_custo_id and contrato_id are required", ErrInvalidArgument)
	}
	res, err := s.resolve(ctx, scope, nil, s.opts.Now())
	if err != nil {
		return nil, err
	}
	return &models.NeedPreview{
		Registros:           res.records,
		Resumo:              Summarize(res.records, res.unitsProcessed),
		UnidadesProcessadas: res.unitsProcessed,
	}, nil
}

// Generate supersedes the scope: the old rows are deleted and the new ones inserted in one
// transaction, so a failure leaves the previous generation in place.
func (s *menuNeedService) Generate(ctx context.Context, scope models.Scope, actingUserID int64) (*models.NeedGeneration, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: cardapio_id, filial_id, centro_custo_id and contrato_id are required", ErrInvalidArgument)
	}
	started := time.Now()

	var user *int64
	if actingUserID > 0 {
		user = &actingUserID
	}
	res, err := s.resolve(ctx, scope, user, s.opts.Now())
	if err != nil {
		return nil, err
	}

	var deleted, inserted int64
	err = s.uow.Execute(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		deleted, txErr = s.needs.DeleteByScope(ctx, exec, scope)
		if txErr != nil {
			return fmt.Errorf("%w: superseding previous needs: %w", ErrStorage, txErr)
		}
		inserted, txErr = s.needs.BulkInsert(ctx, exec, res.records, s.opts.InsertBatchSize)
		if txErr != nil {
			return fmt.Errorf("%w: inserting needs: %w", ErrStorage, txErr)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrStorage) {
			err = fmt.Errorf("%w: %w", ErrStorage, err)
		}
		return nil, err
	}

	utils.LogInfo("Menu needs generated", map[string]interface{}{
		"cardapio_id":     scope.CardapioID,
		"filial_id":       scope.FilialID,
		"centro_custo_id": scope.CentroCustoID,
		"contrato_id":     scope.ContratoID,
		"user_id":         actingUserID,
		"units":           res.unitsProcessed,
		"deleted":         deleted,
		"inserted":        inserted,
		"elapsed":         time.Since(started).String(),
	})

	return &models.NeedGeneration{
		RegistrosInseridos:  inserted,
		UnidadesProcessadas: res.unitsProcessed,
		Resumo:              Summarize(res.records, res.unitsProcessed),
	}, nil
}

func (s *menuNeedService) resolve(ctx context.Context, scope models.Scope, user *int64, now time.Time) (*resolution, error) {
	menu, err := s.catalog.GetMenuByID(ctx, scope.CardapioID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMenuNotFound, scope.CardapioID)
		}
		return nil, fmt.Errorf("%w: loading menu: %w", ErrStorage, err)
	}

	units, err := s.catalog.GetUnitsInScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: loading units: %w", ErrStorage, err)
	}
	if len(units) == 0 {
		return nil, ErrNoUnitsInScope
	}

	unitIDs := make([]int64, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}
	periodsByUnit, err := s.catalog.GetActivePeriodsByUnit(ctx, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: loading unit periods: %w", ErrStorage, err)
	}
	averagesByUnit, err := s.catalog.GetServingAveragesByUnit(ctx, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: loading serving averages: %w", ErrStorage, err)
	}
	enabled, err := s.catalog.GetEnabledPeriodIDs(ctx, scope.CardapioID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading menu periods: %w", ErrStorage, err)
	}

	dishesByPeriod, err := s.catalog.GetScheduledDishesByPeriod(ctx, scope.CardapioID, qualifyingPeriodIDs(periodsByUnit, enabled))
	if err != nil {
		return nil, fmt.Errorf("%w: loading scheduled dishes: %w", ErrStorage, err)
	}
	ingredientsByDish, err := s.catalog.GetDishIngredients(ctx, distinctDishIDs(dishesByPeriod), scope.CentroCustoID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading dish ingredients: %w", ErrStorage, err)
	}

	names := newNameCache(s.catalog)
	records := []models.NeedRecord{}
	for _, unit := range units {
		rc, err := s.recordContext(ctx, names, scope, menu, unit, user, now)
		if err != nil {
			return nil, fmt.Errorf("%w: loading names: %w", ErrStorage, err)
		}
		unitRecords := buildUnitRecords(rc, unit, periodsByUnit[unit.ID], enabled,
			BuildAverageIndex(averagesByUnit[unit.ID]), dishesByPeriod, ingredientsByDish)
		utils.LogDebug("Resolved unit needs", map[string]interface{}{"unidade_id": unit.ID, "records": len(unitRecords)})
		records = append(records, unitRecords...)
	}

	return &resolution{records: records, unitsProcessed: len(units)}, nil
}

func (s *menuNeedService) recordContext(ctx context.Context, names *nameCache, scope models.Scope, menu *models.Menu, unit models.Unit, user *int64, now time.Time) (RecordContext, error) {
	filial, err := names.get(ctx, branchName, menu.ID, unit.FilialID)
	if err != nil {
		return RecordContext{}, err
	}
	centroCusto, err := names.get(ctx, costCenterName, menu.ID, unit.CentroCustoID)
	if err != nil {
		return RecordContext{}, err
	}
	contrato, err := names.get(ctx, contractName, menu.ID, scope.ContratoID)
	if err != nil {
		return RecordContext{}, err
	}
	return RecordContext{
		Scope:           scope,
		CardapioNome:    menu.Nome,
		FilialNome:      filial,
		CentroCustoNome: centroCusto,
		ContratoNome:    contrato,
		UsuarioID:       user,
		GeneratedAt:     now,
	}, nil
}

// buildUnitRecords emits one record per (period, dish, ingredient) of a unit. Periods the menu
// does not enable are skipped; dishes without ingredients for the cost center emit nothing.
func buildUnitRecords(
	rc RecordContext,
	unit models.Unit,
	periods []models.AttendancePeriod,
	enabled map[int64]bool,
	averages AverageIndex,
	dishesByPeriod map[int64][]models.ScheduledDish,
	ingredientsByDish map[int64][]models.DishIngredient,
) []models.NeedRecord {
	var out []models.NeedRecord
	for _, period := range periods {
		if !enabled[period.ID] {
			continue
		}
		average := averages.Lookup(period.ID)
		for _, dish := range dishesByPeriod[period.ID] {
			for _, ing := range ingredientsByDish[dish.PratoID] {
				out = append(out, AssembleRecord(rc, unit, period, dish, ing, average))
			}
		}
	}
	return out
}

func qualifyingPeriodIDs(periodsByUnit map[int64][]models.AttendancePeriod, enabled map[int64]bool) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, periods := range periodsByUnit {
		for _, p := range periods {
			if enabled[p.ID] && !seen[p.ID] {
				seen[p.ID] = true
				ids = append(ids, p.ID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func distinctDishIDs(dishesByPeriod map[int64][]models.ScheduledDish) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, dishes := range dishesByPeriod {
		for _, d := range dishes {
			if !seen[d.PratoID] {
				seen[d.PratoID] = true
				ids = append(ids, d.PratoID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *menuNeedService) List(ctx context.Context, filters models.NeedFilters, params models.NeedListParams) (*models.NeedPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultListLimit
	}
	if params.Limit > s.opts.ListMaxLimit {
		params.Limit = s.opts.ListMaxLimit
	}
	if err := validateDateRange(filters); err != nil {
		return nil, err
	}

	rows, total, err := s.needs.List(ctx, filters, params)
	if err != nil {
		return nil, fmt.Errorf("%w: listing needs: %w", ErrStorage, err)
	}
	if rows == nil {
		rows = []models.NeedRecord{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return &models.NeedPage{
		Rows: rows,
		Pagination: models.Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *menuNeedService) Export(ctx context.Context, filters models.NeedFilters) ([]models.NeedExportRow, error) {
	if err := validateDateRange(filters); err != nil {
		return nil, err
	}
	records, err := s.needs.Export(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting needs: %w", ErrStorage, err)
	}
	rows := make([]models.NeedExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, toExportRow(r))
	}
	return rows, nil
}

func toExportRow(r models.NeedRecord) models.NeedExportRow {
	return models.NeedExportRow{
		Data:               r.Data.Format(exportDateLayout),
		Cardapio:           r.CardapioNome,
		Filial:             r.FilialNome,
		CentroCusto:        r.CentroCustoNome,
		Contrato:           r.ContratoNome,
		Unidade:            r.UnidadeNome,
		PeriodoAtendimento: r.PeriodoAtendimentoNome,
		Ordem:              r.Ordem,
		Prato:              r.PratoNome,
		ProdutoComercial:   r.ProdutoComercialNome,
		CodigoProduto:      r.ProdutoID,
		Produto:            r.ProdutoNome,
		UnidadeMedida:      r.UnidadeMedidaSigla,
		Percapta:           r.Percapta,
		MediaEfetivos:      r.MediaEfetivos,
		Quantidade:         r.Quantidade,
	}
}

// Delete removes one record by id or every record of a scope. Exactly one must be given.
func (s *menuNeedService) Delete(ctx context.Context, id *int64, scope *models.Scope) (int64, error) {
	if (id == nil) == (scope == nil) {
		return 0, fmt.Errorf("%w: provide exactly one of id or scope", ErrInvalidArgument)
	}
	if id != nil && *id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", ErrInvalidArgument)
	}
	if scope != nil && !scope.Valid() {
		return 0, fmt.Errorf("%w: scope requires cardapio_id, filial_id, centro_custo_id and contrato_id", ErrInvalidArgument)
	}

	var affected int64
	err := s.uow.Execute(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		if id != nil {
			affected, txErr = s.needs.DeleteByID(ctx, exec, *id)
		} else {
			affected, txErr = s.needs.DeleteByScope(ctx, exec, *scope)
		}
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: deleting needs: %w", ErrStorage, err)
	}
	return affected, nil
}

func validateDateRange(filters models.NeedFilters) error {
	if filters.DataInicio != nil && filters.DataFim != nil && filters.DataFim.Before(*filters.DataInicio) {
		return fmt.Errorf("%w: data_fim must not be before data_inicio", ErrInvalidArgument)
	}
	return nil
}
