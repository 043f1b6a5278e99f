package invoice

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alyasmeen-backend/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// Invoice is everything the PDF needs: the sale snapshot plus presentation
// bits that are not stored on the sale row.
type Invoice struct {
	Sale      models.Sale
	ShopName  string
	ImagePath string // product image, drawn when readable
}

const footerText = "Thank you for shopping with us"

// Generate writes a single-page A4 invoice. Field values come straight from
// the sale snapshot; nothing is recomputed here.
func Generate(w io.Writer, inv Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// header: shop name and sale date
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, inv.ShopName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Date: "+inv.Sale.SoldAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice for order #%d", inv.Sale.ID), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// customer block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Name: "+inv.Sale.CustomerName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Phone: "+inv.Sale.CustomerPhone, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Address: "+inv.Sale.CustomerAddress, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// product block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Product", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Product: "+inv.Sale.ProductName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Quantity: %d", inv.Sale.Quantity), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Unit price: %.2f", inv.Sale.UnitSell), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %.2f", inv.Sale.Total), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Cost total: %.2f", inv.Sale.CostTotal), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Net profit: %.2f", inv.Sale.NetProfit), "", 1, "L", false, 0, "")

	// product image on the right, skipped when unreadable
	if img := usableImage(inv.ImagePath); img != "" {
		pdf.ImageOptions(img, 130, 60, 60, 0, false,
			gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	// fixed footer
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, footerText, "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// usableImage returns the path only when the file exists and has an
// extension gofpdf can decode.
func usableImage(path string) string {
	if path == "" {
		return ""
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// WriteFile renders the invoice into dir under a customer+timestamp name and
// returns the written path.
func WriteFile(dir string, inv Invoice) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("invoice_%s_%s.pdf", sanitize(inv.Sale.CustomerName), stamp)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	defer f.Close()

	if err := Generate(f, inv); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "customer"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
