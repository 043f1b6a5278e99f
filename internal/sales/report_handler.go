package sales

import (
	"bytes"
	"errors"
	"time"

	"alyasmeen-backend/internal/config"
	"alyasmeen-backend/internal/httpx"
	"alyasmeen-backend/internal/invoice"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/report"

	"github.com/gofiber/fiber/v2"
)

// filterFromQuery reads q/from/to off the request. Dates are inclusive
// calendar days.
func filterFromQuery(c *fiber.Ctx) (ledger.SaleFilter, error) {
	filter := ledger.SaleFilter{Query: c.Query("q")}

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return ledger.SaleFilter{}, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return ledger.SaleFilter{}, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		filter.To = &t
	}
	return filter, nil
}

// GET /api/sales/export — XLSX of the filtered sales, newest first.
func ExportSalesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := filterFromQuery(c)
		if err != nil {
			return err
		}

		sales, err := svc.QuerySales(c.Context(), filter)
		if err != nil {
			return httpx.Error(err)
		}

		var buf bytes.Buffer
		if err := report.WriteSalesXLSX(&buf, sales); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build spreadsheet")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="sales.xlsx"`)
		return c.Send(buf.Bytes())
	}
}

// GET /api/sales/:id/invoice — PDF invoice for one sale.
func InvoiceHandler(svc *ledger.Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		sale, err := svc.GetSale(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}

		// the image lives on the product; a deleted or image-less product
		// just means an invoice without a picture
		imagePath := ""
		if p, err := svc.GetProduct(c.Context(), sale.ProductID); err == nil {
			imagePath = p.ImagePath
		} else {
			var nf *ledger.NotFoundError
			if !errors.As(err, &nf) {
				return httpx.Error(err)
			}
		}

		var buf bytes.Buffer
		err = invoice.Generate(&buf, invoice.Invoice{
			Sale:      sale,
			ShopName:  cfg.ShopName,
			ImagePath: imagePath,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build invoice")
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoice.pdf"`)
		return c.Send(buf.Bytes())
	}
}
