package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"menu_needs_backend/internal/models"
	"menu_needs_backend/internal/repositories"
)

// fakeUnitLink mirrors the contract/branch/cost-center links of one unit.
type fakeUnitLink struct {
	unit       models.Unit
	contractID int64
	active     bool
}

type fakeCatalog struct {
	menus           map[int64]models.Menu
	units           []fakeUnitLink
	menuBranches    map[int64]bool
	menuCostCenters map[int64]bool
	menuContracts   map[int64]bool
	unitPeriods     map[int64][]models.AttendancePeriod
	enabledPeriods  map[int64]bool
	averages        map[int64][]models.ServingAverage
	dishes          []models.ScheduledDish
	// ingredients is keyed by cost center, then dish.
	ingredients map[int64]map[int64][]models.DishIngredient
	branches    map[int64]string
	costCenters map[int64]string
	contracts   map[int64]string

	unitsErr    error
	nameLookups int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		menus:           map[int64]models.Menu{},
		menuBranches:    map[int64]bool{},
		menuCostCenters: map[int64]bool{},
		menuContracts:   map[int64]bool{},
		unitPeriods:     map[int64][]models.AttendancePeriod{},
		enabledPeriods:  map[int64]bool{},
		averages:        map[int64][]models.ServingAverage{},
		ingredients:     map[int64]map[int64][]models.DishIngredient{},
		branches:        map[int64]string{},
		costCenters:     map[int64]string{},
		contracts:       map[int64]string{},
	}
}

func (f *fakeCatalog) GetMenuByID(ctx context.Context, menuID int64) (*models.Menu, error) {
	m, ok := f.menus[menuID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (f *fakeCatalog) GetUnitsInScope(ctx context.Context, scope models.Scope) ([]models.Unit, error) {
	if f.unitsErr != nil {
		return nil, f.unitsErr
	}
	if !f.menuBranches[scope.FilialID] || !f.menuCostCenters[scope.CentroCustoID] || !f.menuContracts[scope.ContratoID] {
		return nil, nil
	}
	var out []models.Unit
	for _, l := range f.units {
		if !l.active || l.contractID != scope.ContratoID {
			continue
		}
		if l.unit.FilialID != scope.FilialID || l.unit.CentroCustoID != scope.CentroCustoID {
			continue
		}
		out = append(out, l.unit)
	}
	return out, nil
}

func (f *fakeCatalog) GetActivePeriodsByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.AttendancePeriod, error) {
	out := map[int64][]models.AttendancePeriod{}
	for _, id := range unitIDs {
		if p, ok := f.unitPeriods[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetEnabledPeriodIDs(ctx context.Context, menuID int64) (map[int64]bool, error) {
	return f.enabledPeriods, nil
}

func (f *fakeCatalog) GetServingAveragesByUnit(ctx context.Context, unitIDs []int64) (map[int64][]models.ServingAverage, error) {
	out := map[int64][]models.ServingAverage{}
	for _, id := range unitIDs {
		out[id] = f.averages[id]
	}
	return out, nil
}

func (f *fakeCatalog) GetScheduledDishesByPeriod(ctx context.Context, menuID int64, periodIDs []int64) (map[int64][]models.ScheduledDish, error) {
	wanted := map[int64]bool{}
	for _, id := range periodIDs {
		wanted[id] = true
	}
	out := map[int64][]models.ScheduledDish{}
	for _, d := range f.dishes {
		if wanted[d.PeriodoAtendimentoID] {
			out[d.PeriodoAtendimentoID] = append(out[d.PeriodoAtendimentoID], d)
		}
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].Data.Equal(list[j].Data) {
				return list[i].Data.Before(list[j].Data)
			}
			return list[i].Ordem < list[j].Ordem
		})
	}
	return out, nil
}

func (f *fakeCatalog) GetDishIngredients(ctx context.Context, dishIDs []int64, costCenterID int64) (map[int64][]models.DishIngredient, error) {
	out := map[int64][]models.DishIngredient{}
	for _, id := range dishIDs {
		if ings, ok := f.ingredients[costCenterID][id]; ok {
			out[id] = ings
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetBranchName(ctx context.Context, menuID, branchID int64) (string, error) {
	f.nameLookups++
	return f.branches[branchID], nil
}

func (f *fakeCatalog) GetCostCenterName(ctx context.Context, menuID, costCenterID int64) (string, error) {
	f.nameLookups++
	return f.costCenters[costCenterID], nil
}

func (f *fakeCatalog) GetContractName(ctx context.Context, menuID, contractID int64) (string, error) {
	f.nameLookups++
	return f.contracts[contractID], nil
}

var errInsertFailed = errors.New("insert failed")

// fakeNeedRepository stores rows in memory and ignores the executor.
type fakeNeedRepository struct {
	rows       []models.NeedRecord
	nextID     int64
	failInsert bool
	batchSizes []int
	listParams models.NeedListParams
	listTotal  int
}

func sameScope(r models.NeedRecord, s models.Scope) bool {
	return r.CardapioID == s.CardapioID && r.FilialID == s.FilialID &&
		r.CentroCustoID == s.CentroCustoID && r.ContratoID == s.ContratoID
}

func (f *fakeNeedRepository) DeleteByScope(ctx context.Context, executor repositories.SQLExecutor, scope models.Scope) (int64, error) {
	kept := f.rows[:0:0]
	var n int64
	for _, r := range f.rows {
		if sameScope(r, scope) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeNeedRepository) DeleteByID(ctx context.Context, executor repositories.SQLExecutor, id int64) (int64, error) {
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeNeedRepository) BulkInsert(ctx context.Context, executor repositories.SQLExecutor, records []models.NeedRecord, batchSize int) (int64, error) {
	f.batchSizes = append(f.batchSizes, batchSize)
	var n int64
	for i, r := range records {
		if f.failInsert && i > 0 {
			return n, errInsertFailed
		}
		f.nextID++
		r.ID = f.nextID
		f.rows = append(f.rows, r)
		n++
	}
	if f.failInsert {
		return n, errInsertFailed
	}
	return n, nil
}

func (f *fakeNeedRepository) List(ctx context.Context, filters models.NeedFilters, params models.NeedListParams) ([]models.NeedRecord, int, error) {
	f.listParams = params
	return nil, f.listTotal, nil
}

func (f *fakeNeedRepository) Export(ctx context.Context, filters models.NeedFilters) ([]models.NeedRecord, error) {
	var out []models.NeedRecord
	for _, r := range f.rows {
		if filters.CardapioID != nil && r.CardapioID != *filters.CardapioID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// fakeUnitOfWork restores the repository snapshot when fn fails.
type fakeUnitOfWork struct {
	repo      *fakeNeedRepository
	calls     int
	rollbacks int
}

func (u *fakeUnitOfWork) Execute(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	u.calls++
	snapshot := append([]models.NeedRecord(nil), u.repo.rows...)
	if err := fn(nil); err != nil {
		u.repo.rows = snapshot
		u.rollbacks++
		return err
	}
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newTestService(catalog *fakeCatalog, opts MenuNeedOptions) (MenuNeedService, *fakeNeedRepository, *fakeUnitOfWork) {
	repo := &fakeNeedRepository{}
	uow := &fakeUnitOfWork{repo: repo}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewMenuNeedService(catalog, repo, uow, opts), repo, uow
}
