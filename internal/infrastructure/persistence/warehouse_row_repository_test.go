package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRowRepository(t *testing.T) (*GormWarehouseRowRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWarehouseRowRepository(gormDB), mock, mockDB
}

func TestGormWarehouseRowRepository_FindByID(t *testing.T) {
	t.Run("finds existing row", func(t *testing.T) {
		repo, mock, mockDB := newMockRowRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()
		rows := sqlmock.NewRows([]string{
			"id", "wh_name", "product_name", "brand", "lc_no", "wh_qty", "wh_pkt", "record_type", "version",
		}).AddRow(rowID, "Central", "Rice", "Golden", "LC-1", "300", "12", "stock", 1)

		mock.ExpectQuery(`SELECT \* FROM "warehouse_rows" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(rowID, 1).
			WillReturnRows(rows)

		row, err := repo.FindByID(context.Background(), rowID)
		require.NoError(t, err)
		assert.Equal(t, "Central", row.WhName)
		assert.True(t, row.WhQty.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, stock.RecordTypeStock, row.RecordType)
	})

	t.Run("returns ErrNotFound for missing row", func(t *testing.T) {
		repo, mock, mockDB := newMockRowRepository(t)
		defer mockDB.Close()

		rowID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouse_rows" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(rowID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), rowID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormWarehouseRowRepository_FindByWarehouse(t *testing.T) {
	repo, mock, mockDB := newMockRowRepository(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"id", "wh_name", "product_name", "brand", "lc_no"}).
		AddRow(uuid.New(), "Central", "Rice", "Golden", "LC-1").
		AddRow(uuid.New(), "Central", "Rice", "Golden", "LC-2")

	mock.ExpectQuery(`SELECT \* FROM "warehouse_rows" WHERE LOWER\(wh_name\) = LOWER\(\$1\)`).
		WithArgs("central").
		WillReturnRows(rows)

	result, err := repo.FindByWarehouse(context.Background(), "central")
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGormWarehouseRowRepository_SaveWithLock(t *testing.T) {
	newRow := func() *stock.WarehouseRow {
		row, err := stock.NewWarehouseRow("Central", "Rice", "Golden", stock.RecordTypeStock)
		if err != nil {
			panic(err)
		}
		row.IncrementVersion()
		return row
	}

	t.Run("updates when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockRowRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "warehouse_rows" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SaveWithLock(context.Background(), newRow()))
	})

	t.Run("returns conflict when row was changed concurrently", func(t *testing.T) {
		repo, mock, mockDB := newMockRowRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "warehouse_rows" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), newRow())
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormWarehouseRowRepository_Create(t *testing.T) {
	repo, mock, mockDB := newMockRowRepository(t)
	defer mockDB.Close()

	row, err := stock.NewWarehouseRow("Depot", "Rice", "Golden", stock.RecordTypeWarehouse)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "warehouse_rows"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), row))
}

func TestGormWarehouseRowRepository_Delete(t *testing.T) {
	repo, mock, mockDB := newMockRowRepository(t)
	defer mockDB.Close()

	rowID := uuid.New()
	mock.ExpectExec(`DELETE FROM "warehouse_rows" WHERE id = \$1`).
		WithArgs(rowID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), rowID), shared.ErrNotFound)
}

func TestGormWarehouseRowRepository_InterfaceCompliance(t *testing.T) {
	var _ stock.WarehouseRowRepository = (*GormWarehouseRowRepository)(nil)
	var _ stock.SaleRecordSource = (*GormSaleRepository)(nil)
}
