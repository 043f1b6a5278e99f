package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"alyasmeen-backend/internal/models"

	"gorm.io/gorm"
)

// Service owns every read and write against the products/sales tables. Both
// front-ends go through it; neither holds SQL of its own. The multi-write
// operations (record, edit, delete sale) run in a single transaction so the
// sale row and the stock adjustment commit together or not at all.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// NewServiceWithClock pins the clock, used by period-stat tests.
func NewServiceWithClock(db *gorm.DB, now func() time.Time) *Service {
	return &Service{db: db, now: now}
}

type AddProductInput struct {
	Name        string
	Description string
	Quantity    int
	CostPrice   float64
	SellPrice   float64
	ImagePath   string
}

func (s *Service) AddProduct(ctx context.Context, in AddProductInput) (uint, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return 0, validationErr("name", "required")
	}
	if in.Quantity < 0 {
		return 0, validationErr("quantity", "must not be negative")
	}
	if in.CostPrice < 0 {
		return 0, validationErr("cost_price", "must not be negative")
	}
	if in.SellPrice < 0 {
		return 0, validationErr("sell_price", "must not be negative")
	}

	p := models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		CostPrice:   in.CostPrice,
		SellPrice:   in.SellPrice,
		ImagePath:   in.ImagePath,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, persistenceErr("insert product", err)
	}
	return p.ID, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, &NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return models.Product{}, persistenceErr("load product", err)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, persistenceErr("list products", err)
	}
	return products, nil
}

type RecordSaleInput struct {
	ProductID       uint
	Quantity        int
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
}

// RecordSale snapshots the product's current sell/cost price into the sale
// row, computes the totals, and decrements the product stock by the sold
// quantity. Stock is allowed to go negative: the shop records backorders
// rather than refusing the sale.
func (s *Service) RecordSale(ctx context.Context, in RecordSaleInput) (uint, error) {
	if in.ProductID == 0 {
		return 0, validationErr("product_id", "required")
	}
	if in.Quantity <= 0 {
		return 0, validationErr("quantity", "must be greater than zero")
	}

	var saleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "product", ID: in.ProductID}
			}
			return persistenceErr("load product", err)
		}

		total := p.SellPrice * float64(in.Quantity)
		costTotal := p.CostPrice * float64(in.Quantity)
		sale := models.Sale{
			SoldAt:          s.now(),
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        in.Quantity,
			UnitSell:        p.SellPrice,
			UnitCost:        p.CostPrice,
			Total:           total,
			CostTotal:       costTotal,
			NetProfit:       total - costTotal,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
			CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return persistenceErr("insert sale", err)
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).
			Update("quantity", gorm.Expr("quantity - ?", in.Quantity)).Error; err != nil {
			return persistenceErr("decrement stock", err)
		}
		saleID = sale.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saleID, nil
}

type EditSaleInput struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Quantity        int
	UnitSell        float64
}

// EditSale rewrites customer fields, quantity and unit sell price. The totals
// are recomputed from the new quantity, the new unit sell price and the
// stored unit cost; the referenced product's stock moves by the quantity
// delta in the same transaction. The product and the captured unit cost are
// not editable.
func (s *Service) EditSale(ctx context.Context, saleID uint, in EditSaleInput) error {
	if in.Quantity <= 0 {
		return validationErr("quantity", "must be greater than zero")
	}
	if in.UnitSell < 0 {
		return validationErr("unit_sell", "must not be negative")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.First(&sale, "id = ?", saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "sale", ID: saleID}
			}
			return persistenceErr("load sale", err)
		}

		diff := sale.Quantity - in.Quantity
		if diff != 0 {
			if err := tx.Model(&models.Product{}).Where("id = ?", sale.ProductID).
				Update("quantity", gorm.Expr("quantity + ?", diff)).Error; err != nil {
				return persistenceErr("adjust stock", err)
			}
		}

		total := in.UnitSell * float64(in.Quantity)
		costTotal := sale.UnitCost * float64(in.Quantity)
		updates := map[string]any{
			"customer_name":    strings.TrimSpace(in.CustomerName),
			"customer_phone":   strings.TrimSpace(in.CustomerPhone),
			"customer_address": strings.TrimSpace(in.CustomerAddress),
			"quantity":         in.Quantity,
			"unit_sell":        in.UnitSell,
			"total":            total,
			"cost_total":       costTotal,
			"net_profit":       total - costTotal,
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).Updates(updates).Error; err != nil {
			return persistenceErr("update sale", err)
		}
		return nil
	})
}

// DeleteSale restores the sold quantity onto the product, then removes the
// sale row, atomically.
func (s *Service) DeleteSale(ctx context.Context, saleID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.First(&sale, "id = ?", saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "sale", ID: saleID}
			}
			return persistenceErr("load sale", err)
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", sale.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", sale.Quantity)).Error; err != nil {
			return persistenceErr("restore stock", err)
		}
		if err := tx.Delete(&models.Sale{}, "id = ?", saleID).Error; err != nil {
			return persistenceErr("delete sale", err)
		}
		return nil
	})
}

func (s *Service) GetSale(ctx context.Context, id uint) (models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Sale{}, &NotFoundError{Entity: "sale", ID: id}
	}
	if err != nil {
		return models.Sale{}, persistenceErr("load sale", err)
	}
	return sale, nil
}

// SaleFilter narrows QuerySales. Query matches product or customer name,
// case-insensitive substring. From/To are inclusive date bounds.
type SaleFilter struct {
	Query string
	From  *time.Time
	To    *time.Time
}

func (s *Service) QuerySales(ctx context.Context, filter SaleFilter) ([]models.Sale, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Sale{})

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := "%" + q + "%"
		dbq = dbq.Where("LOWER(product_name) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if filter.From != nil {
		dbq = dbq.Where("sold_at >= ?", startOfDay(*filter.From))
	}
	if filter.To != nil {
		// inclusive upper bound: anything before the next day
		dbq = dbq.Where("sold_at < ?", startOfDay(*filter.To).AddDate(0, 0, 1))
	}

	var sales []models.Sale
	if err := dbq.Order("id desc").Find(&sales).Error; err != nil {
		return nil, persistenceErr("query sales", err)
	}
	return sales, nil
}

// Period selects the date window for AggregateStats.
type Period string

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month" // month-to-date
	PeriodAll   Period = "all"
)

type Stats struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

func (s *Service) AggregateStats(ctx context.Context, period Period) (Stats, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Sale{})

	now := s.now()
	switch period {
	case PeriodToday:
		dbq = dbq.Where("sold_at >= ?", startOfDay(now))
	case PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		dbq = dbq.Where("sold_at >= ?", monthStart)
	case PeriodAll:
		// no bound
	default:
		return Stats{}, validationErr("period", "must be today, month or all")
	}

	var stats Stats
	err := dbq.Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue, COALESCE(SUM(net_profit), 0) AS profit").
		Scan(&stats).Error
	if err != nil {
		return Stats{}, persistenceErr("aggregate stats", err)
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
