package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"menu_needs_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetMenuByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("FROM cardapios").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "mes_referencia", "ano_referencia"}))

	_, err := repo.GetMenuByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetMenuByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("FROM cardapios").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "mes_referencia", "ano_referencia"}).
			AddRow(int64(1), "Cardápio Maio", int64(5), int64(2024)))

	menu, err := repo.GetMenuByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMenuByID: %v", err)
	}
	if menu.Nome != "Cardápio Maio" || menu.MesReferencia != 5 || menu.AnoReferencia != 2024 {
		t.Errorf("unexpected menu: %+v", menu)
	}
}

func TestGetUnitsInScopeBindsActiveStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)
	scope := models.Scope{CardapioID: 1, FilialID: 2, CentroCustoID: 3, ContratoID: 4}

	mock.ExpectQuery("FROM unidades u INNER JOIN contrato_unidades cu").
		WithArgs(int64(4), int64(2), int64(3), int64(1), statusAtivo).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "filial_id", "centro_custo_id"}).
			AddRow(int64(11), "EMEF Centro", int64(2), int64(3)))

	units, err := repo.GetUnitsInScope(context.Background(), scope)
	if err != nil {
		t.Fatalf("GetUnitsInScope: %v", err)
	}
	if len(units) != 1 || units[0].ID != 11 {
		t.Errorf("unexpected units: %+v", units)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetActivePeriodsByUnitGroups(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("FROM unidade_periodos_atendimento upa").
		WillReturnRows(sqlmock.NewRows([]string{"unidade_id", "id", "nome"}).
			AddRow(int64(11), int64(21), "Almoço").
			AddRow(int64(11), int64(22), "Jantar").
			AddRow(int64(12), int64(21), "Almoço"))

	periods, err := repo.GetActivePeriodsByUnit(context.Background(), []int64{11, 12})
	if err != nil {
		t.Fatalf("GetActivePeriodsByUnit: %v", err)
	}
	if len(periods[11]) != 2 || len(periods[12]) != 1 {
		t.Errorf("unexpected grouping: %+v", periods)
	}
}

func TestGetActivePeriodsByUnitNoUnits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	periods, err := repo.GetActivePeriodsByUnit(context.Background(), nil)
	if err != nil || len(periods) != 0 {
		t.Fatalf("expected empty result without a query, got %v %v", periods, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetServingAveragesKeepsNullMedia(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)
	calc := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM medias_efetivos").
		WillReturnRows(sqlmock.NewRows([]string{"unidade_id", "periodo_atendimento_id", "media", "data_calculo"}).
			AddRow(int64(11), int64(21), "120.00", calc).
			AddRow(int64(11), int64(22), nil, calc))

	averages, err := repo.GetServingAveragesByUnit(context.Background(), []int64{11})
	if err != nil {
		t.Fatalf("GetServingAveragesByUnit: %v", err)
	}
	rows := averages[11]
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Media == nil || *rows[0].Media != "120.00" {
		t.Errorf("unexpected media: %v", rows[0].Media)
	}
	if rows[1].Media != nil {
		t.Errorf("expected nil media, got %q", *rows[1].Media)
	}
}

func TestLookupNameMissingIsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("FROM cardapio_filiais cf").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"nome"}))
	mock.ExpectQuery("FROM contrato_cardapios cc").
		WithArgs(int64(1), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"nome"}).AddRow("Contrato 12/2023"))

	branch, err := repo.GetBranchName(context.Background(), 1, 2)
	if err != nil || branch != "" {
		t.Fatalf("expected empty branch name, got %q %v", branch, err)
	}
	contract, err := repo.GetContractName(context.Background(), 1, 4)
	if err != nil || contract != "Contrato 12/2023" {
		t.Fatalf("unexpected contract name %q %v", contract, err)
	}
}

func TestLookupNameDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("FROM cardapio_centros_custo ccc").WillReturnError(errors.New("timeout"))

	_, err := repo.GetCostCenterName(context.Background(), 1, 3)
	if !errors.Is(err, ErrDatabaseError) {
		t.Fatalf("expected ErrDatabaseError, got %v", err)
	}
}
