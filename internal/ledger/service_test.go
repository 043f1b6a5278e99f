package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"alyasmeen-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// tests run against a real store file so the transaction boundary around
// sale + stock writes is actually exercised
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store.sqlite3")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Sale{}))
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(newTestDB(t))
}

func addOud(t *testing.T, svc *Service) uint {
	t.Helper()
	id, err := svc.AddProduct(context.Background(), AddProductInput{
		Name:      "Oud",
		Quantity:  10,
		CostPrice: 50,
		SellPrice: 120,
	})
	require.NoError(t, err)
	return id
}

func productQty(t *testing.T, svc *Service, id uint) int {
	t.Helper()
	p, err := svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestAddProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   AddProductInput
	}{
		{"empty name", AddProductInput{Name: "  ", Quantity: 1, SellPrice: 10}},
		{"negative quantity", AddProductInput{Name: "Musk", Quantity: -1}},
		{"negative cost", AddProductInput{Name: "Musk", CostPrice: -5}},
		{"negative sell", AddProductInput{Name: "Musk", SellPrice: -0.01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddProduct(ctx, tc.in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestRecordSaleComputesAndDecrements(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{
		ProductID:       pid,
		Quantity:        3,
		CustomerName:    "Ali",
		CustomerPhone:   "0100000000",
		CustomerAddress: "Cairo",
	})
	require.NoError(t, err)

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.Equal(t, "Oud", sale.ProductName)
	require.Equal(t, 3, sale.Quantity)
	require.InDelta(t, 120.0, sale.UnitSell, 1e-9)
	require.InDelta(t, 50.0, sale.UnitCost, 1e-9)
	require.InDelta(t, 360.0, sale.Total, 1e-9)
	require.InDelta(t, 150.0, sale.CostTotal, 1e-9)
	require.InDelta(t, 210.0, sale.NetProfit, 1e-9)
	require.Equal(t, "Ali", sale.CustomerName)

	require.Equal(t, 7, productQty(t, svc, pid))
}

func TestRecordSaleValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: -2})
	require.ErrorAs(t, err, &vErr)

	// nothing was written, stock untouched
	require.Equal(t, 10, productQty(t, svc, pid))
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{ProductID: 999, Quantity: 1})
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestRecordSaleAllowsBackorder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 15, CustomerName: "Mona"})
	require.NoError(t, err)
	require.Equal(t, -5, productQty(t, svc, pid))
}

func TestSnapshotPricingSurvivesProductChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	// a later price change on the product must not touch the sale
	err = svc.db.Model(&models.Product{}).Where("id = ?", pid).
		Updates(map[string]any{"sell_price": 999.0, "cost_price": 500.0}).Error
	require.NoError(t, err)

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.InDelta(t, 120.0, sale.UnitSell, 1e-9)
	require.InDelta(t, 240.0, sale.Total, 1e-9)
}

func TestEditSaleAdjustsStockByDelta(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3, CustomerName: "Ali"})
	require.NoError(t, err)
	require.Equal(t, 7, productQty(t, svc, pid))

	err = svc.EditSale(ctx, saleID, EditSaleInput{
		CustomerName: "Ali",
		Quantity:     5,
		UnitSell:     120,
	})
	require.NoError(t, err)

	require.Equal(t, 5, productQty(t, svc, pid))

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.Equal(t, 5, sale.Quantity)
	require.InDelta(t, 600.0, sale.Total, 1e-9)
	require.InDelta(t, 250.0, sale.CostTotal, 1e-9)
	require.InDelta(t, 350.0, sale.NetProfit, 1e-9)
}

func TestEditSaleRecomputesFromStoredUnitCost(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 2})
	require.NoError(t, err)

	err = svc.EditSale(ctx, saleID, EditSaleInput{Quantity: 2, UnitSell: 150})
	require.NoError(t, err)

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.InDelta(t, 300.0, sale.Total, 1e-9)
	require.InDelta(t, 100.0, sale.CostTotal, 1e-9) // unit cost snapshot still 50
	require.InDelta(t, 200.0, sale.NetProfit, 1e-9)
	require.Equal(t, 8, productQty(t, svc, pid)) // quantity unchanged, stock unchanged
}

func TestEditSaleValidationAndNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var vErr *ValidationError
	require.ErrorAs(t, svc.EditSale(ctx, 1, EditSaleInput{Quantity: 0, UnitSell: 10}), &vErr)
	require.ErrorAs(t, svc.EditSale(ctx, 1, EditSaleInput{Quantity: 1, UnitSell: -1}), &vErr)

	var nfErr *NotFoundError
	require.ErrorAs(t, svc.EditSale(ctx, 42, EditSaleInput{Quantity: 1, UnitSell: 10}), &nfErr)
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 7, productQty(t, svc, pid))

	require.NoError(t, svc.DeleteSale(ctx, saleID))
	require.Equal(t, 10, productQty(t, svc, pid))

	_, err = svc.GetSale(ctx, saleID)
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)

	salesList, err := svc.QuerySales(ctx, SaleFilter{})
	require.NoError(t, err)
	require.Empty(t, salesList)

	require.ErrorAs(t, svc.DeleteSale(ctx, saleID), &nfErr)
}

// the full scenario from the shop's books: record, edit, delete
func TestOudScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3, CustomerName: "Ali"})
	require.NoError(t, err)

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.InDelta(t, 360.0, sale.Total, 1e-9)
	require.InDelta(t, 210.0, sale.NetProfit, 1e-9)
	require.Equal(t, 7, productQty(t, svc, pid))

	require.NoError(t, svc.EditSale(ctx, saleID, EditSaleInput{CustomerName: "Ali", Quantity: 5, UnitSell: 120}))
	require.Equal(t, 5, productQty(t, svc, pid))
	sale, err = svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.InDelta(t, 600.0, sale.Total, 1e-9)

	require.NoError(t, svc.DeleteSale(ctx, saleID))
	require.Equal(t, 10, productQty(t, svc, pid))
}

// freezeStock installs a trigger that makes every stock UPDATE fail, so the
// second write of a sale transaction can be forced to error mid-flight.
func freezeStock(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`CREATE TRIGGER freeze_stock BEFORE UPDATE ON products
		BEGIN SELECT RAISE(ABORT, 'stock frozen'); END`).Error
	require.NoError(t, err)
}

func TestRecordSaleRollsBackWhenStockWriteFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	pid := addOud(t, svc)

	freezeStock(t, db)

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3, CustomerName: "Ali"})
	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)

	// the sale insert succeeded inside the transaction but must not survive it
	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	require.Zero(t, count)
	require.Equal(t, 10, productQty(t, svc, pid))
}

func TestDeleteSaleRollsBackWhenStockWriteFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3})
	require.NoError(t, err)

	freezeStock(t, db)

	var pErr *PersistenceError
	require.ErrorAs(t, svc.DeleteSale(ctx, saleID), &pErr)

	// sale row and stock both unchanged
	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.Equal(t, 3, sale.Quantity)
	require.Equal(t, 7, productQty(t, svc, pid))
}

func TestEditSaleRollsBackWhenStockWriteFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 3})
	require.NoError(t, err)

	freezeStock(t, db)

	var pErr *PersistenceError
	require.ErrorAs(t, svc.EditSale(ctx, saleID, EditSaleInput{Quantity: 5, UnitSell: 120}), &pErr)

	sale, err := svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	require.Equal(t, 3, sale.Quantity)
	require.InDelta(t, 360.0, sale.Total, 1e-9)
	require.Equal(t, 7, productQty(t, svc, pid))
}

func TestQuerySalesFiltersAndOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	muskID, err := svc.AddProduct(ctx, AddProductInput{Name: "Musk", Quantity: 5, CostPrice: 20, SellPrice: 60})
	require.NoError(t, err)

	first, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 1, CustomerName: "Ali Hassan"})
	require.NoError(t, err)
	second, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: muskID, Quantity: 2, CustomerName: "Mona"})
	require.NoError(t, err)

	// no filter: newest first
	all, err := svc.QuerySales(ctx, SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second, all[0].ID)
	require.Equal(t, first, all[1].ID)

	// case-insensitive product match
	got, err := svc.QuerySales(ctx, SaleFilter{Query: "OUD"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, first, got[0].ID)

	// case-insensitive customer match
	got, err = svc.QuerySales(ctx, SaleFilter{Query: "mona"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, second, got[0].ID)

	// substring that matches nothing
	got, err = svc.QuerySales(ctx, SaleFilter{Query: "amber"})
	require.NoError(t, err)
	require.Empty(t, got)

	// inclusive date bounds around today catch everything
	today := time.Now()
	got, err = svc.QuerySales(ctx, SaleFilter{From: &today, To: &today})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// a window that ended yesterday catches nothing
	yesterday := today.AddDate(0, 0, -1)
	got, err = svc.QuerySales(ctx, SaleFilter{To: &yesterday})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRecordThenQueryRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	pid := addOud(t, svc)

	saleID, err := svc.RecordSale(ctx, RecordSaleInput{
		ProductID:       pid,
		Quantity:        2,
		CustomerName:    "Salma",
		CustomerPhone:   "0111111111",
		CustomerAddress: "Giza",
	})
	require.NoError(t, err)

	got, err := svc.QuerySales(ctx, SaleFilter{Query: "salma"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	s := got[0]
	require.Equal(t, saleID, s.ID)
	require.Equal(t, pid, s.ProductID)
	require.Equal(t, "Oud", s.ProductName)
	require.Equal(t, 2, s.Quantity)
	require.InDelta(t, 240.0, s.Total, 1e-9)
	require.InDelta(t, 100.0, s.CostTotal, 1e-9)
	require.InDelta(t, 140.0, s.NetProfit, 1e-9)
	require.Equal(t, "Salma", s.CustomerName)
	require.Equal(t, "0111111111", s.CustomerPhone)
	require.Equal(t, "Giza", s.CustomerAddress)
}

func TestAggregateStatsPeriods(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.Local)
	svc := NewServiceWithClock(db, func() time.Time { return now })
	ctx := context.Background()
	pid := addOud(t, svc)

	// one sale "today", via the pinned clock
	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 1})
	require.NoError(t, err)

	// one sale earlier this month and one last month, backdated directly
	for _, at := range []time.Time{
		time.Date(2026, 8, 2, 9, 0, 0, 0, time.Local),
		time.Date(2026, 7, 20, 9, 0, 0, 0, time.Local),
	} {
		id, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: pid, Quantity: 1})
		require.NoError(t, err)
		require.NoError(t, db.Model(&models.Sale{}).Where("id = ?", id).Update("sold_at", at).Error)
	}

	today, err := svc.AggregateStats(ctx, PeriodToday)
	require.NoError(t, err)
	require.Equal(t, int64(1), today.Count)
	require.InDelta(t, 120.0, today.Revenue, 1e-9)
	require.InDelta(t, 70.0, today.Profit, 1e-9)

	month, err := svc.AggregateStats(ctx, PeriodMonth)
	require.NoError(t, err)
	require.Equal(t, int64(2), month.Count)
	require.InDelta(t, 240.0, month.Revenue, 1e-9)

	all, err := svc.AggregateStats(ctx, PeriodAll)
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Count)
	require.InDelta(t, 360.0, all.Revenue, 1e-9)
	require.InDelta(t, 210.0, all.Profit, 1e-9)

	// idempotent without intervening sales
	again, err := svc.AggregateStats(ctx, PeriodToday)
	require.NoError(t, err)
	require.Equal(t, today, again)

	_, err = svc.AggregateStats(ctx, Period("week"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestAggregateStatsEmptyStore(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.AggregateStats(context.Background(), PeriodAll)
	require.NoError(t, err)
	require.Equal(t, Stats{}, stats)
}
