package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"alyasmeen-backend/internal/config"
	"alyasmeen-backend/internal/inventory"
	"alyasmeen-backend/internal/invoice"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/models"
	"alyasmeen-backend/internal/report"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

const shellPrompt = "alyasmeen> "

// errCancelled means the user hit Ctrl+C or EOF inside a field prompt; the
// current command is abandoned, the shell keeps running.
var errCancelled = errors.New("cancelled")

type shell struct {
	svc    *ledger.Service
	images *inventory.ImageStore
	cfg    *config.Config
	rl     *readline.Instance
}

func newShell(svc *ledger.Service, cfg *config.Config) (*shell, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            shellPrompt,
		HistoryFile:       filepath.Join(homeDir, ".alyasmeen_history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize readline: %w", err)
	}

	return &shell{
		svc:    svc,
		images: inventory.NewImageStore(cfg.ImageDir),
		cfg:    cfg,
		rl:     rl,
	}, nil
}

func (s *shell) Close() error {
	return s.rl.Close()
}

func (s *shell) Run() error {
	fmt.Println(s.cfg.ShopName)
	fmt.Println("Type 'help' for commands, 'exit' to quit. Up/Down for history.")

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		var cmdErr error
		switch strings.ToLower(cmd) {
		case "exit", "quit":
			return nil
		case "help":
			s.printHelp()
		case "dashboard":
			cmdErr = renderStats(context.Background(), s.svc)
		case "products":
			cmdErr = s.listProducts()
		case "add-product":
			cmdErr = s.addProduct()
		case "sell":
			cmdErr = s.recordSale()
		case "orders":
			cmdErr = s.listOrders()
		case "edit":
			cmdErr = s.editSale(args)
		case "delete":
			cmdErr = s.deleteSale(args)
		case "invoice":
			cmdErr = s.writeInvoice(args)
		case "report":
			cmdErr = s.report()
		default:
			fmt.Println("Unknown command, type 'help'.")
		}

		if cmdErr != nil && !errors.Is(cmdErr, errCancelled) {
			fmt.Println("Error:", cmdErr)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Println("  dashboard          Today / month-to-date / all-time totals")
	fmt.Println("  products           List products with stock and prices")
	fmt.Println("  add-product        Add a product (optional image file)")
	fmt.Println("  sell               Record a sale")
	fmt.Println("  orders             List sales, newest first")
	fmt.Println("  edit [id]          Edit a sale's customer, quantity, price")
	fmt.Println("  delete [id]        Delete a sale and restore its stock")
	fmt.Println("  invoice [id]       Write a PDF invoice for a sale")
	fmt.Println("  report             Filtered sales report, optional export")
	fmt.Println("  exit               Quit")
}

// prompt asks for one field on its own line. Ctrl+C or EOF abandons the
// whole command instead of the shell.
func (s *shell) prompt(label string) (string, error) {
	s.rl.SetPrompt(label + ": ")
	defer s.rl.SetPrompt(shellPrompt)

	line, err := s.rl.Readline()
	if err != nil {
		return "", errCancelled
	}
	return strings.TrimSpace(line), nil
}

func (s *shell) promptInt(label string) (int, error) {
	v, err := s.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", v)
	}
	return n, nil
}

func (s *shell) promptFloat(label string) (float64, error) {
	v, err := s.prompt(label)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	return f, nil
}

func (s *shell) promptDate(label string) (*time.Time, error) {
	v, err := s.prompt(label)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%q is not a YYYY-MM-DD date", v)
	}
	return &t, nil
}

// idArg takes the id from the command line when given, otherwise asks.
func (s *shell) idArg(args []string, label string) (uint, error) {
	if len(args) > 0 {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%q is not an id", args[0])
		}
		return uint(id), nil
	}
	n, err := s.promptInt(label)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func renderStats(ctx context.Context, svc *ledger.Service) error {
	t := newTable()
	t.AppendHeader(table.Row{"Period", "Orders", "Revenue", "Net Profit"})

	for _, p := range []struct {
		label  string
		period ledger.Period
	}{
		{"Today", ledger.PeriodToday},
		{"This month", ledger.PeriodMonth},
		{"All time", ledger.PeriodAll},
	} {
		stats, err := svc.AggregateStats(ctx, p.period)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{p.label, stats.Count, money(stats.Revenue), money(stats.Profit)})
	}

	t.Render()
	return nil
}

func (s *shell) listProducts() error {
	products, err := s.svc.ListProducts(context.Background())
	if err != nil {
		return err
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Stock", "Cost", "Sell"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Name, p.Quantity, money(p.CostPrice), money(p.SellPrice)})
	}
	t.Render()
	fmt.Printf("%d product(s)\n", len(products))
	return nil
}

func (s *shell) addProduct() error {
	name, err := s.prompt("Product name")
	if err != nil {
		return err
	}
	desc, err := s.prompt("Description")
	if err != nil {
		return err
	}
	qty, err := s.promptInt("Quantity")
	if err != nil {
		return err
	}
	cost, err := s.promptFloat("Cost price")
	if err != nil {
		return err
	}
	sell, err := s.promptFloat("Sell price")
	if err != nil {
		return err
	}
	imgSrc, err := s.prompt("Image file (empty for none)")
	if err != nil {
		return err
	}

	imagePath := ""
	if imgSrc != "" {
		stored, copyErr := s.images.CopyFile(imgSrc)
		if copyErr != nil {
			logrus.WithError(copyErr).Warn("image copy failed, saving product without image")
		} else {
			imagePath = stored
		}
	}

	id, err := s.svc.AddProduct(context.Background(), ledger.AddProductInput{
		Name:        name,
		Description: desc,
		Quantity:    qty,
		CostPrice:   cost,
		SellPrice:   sell,
		ImagePath:   imagePath,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Product #%d saved.\n", id)
	return nil
}

func (s *shell) recordSale() error {
	if err := s.listProducts(); err != nil {
		return err
	}

	pid, err := s.promptInt("Product id")
	if err != nil {
		return err
	}
	qty, err := s.promptInt("Quantity")
	if err != nil {
		return err
	}
	name, err := s.prompt("Customer name")
	if err != nil {
		return err
	}
	phone, err := s.prompt("Customer phone")
	if err != nil {
		return err
	}
	addr, err := s.prompt("Customer address")
	if err != nil {
		return err
	}

	ctx := context.Background()
	id, err := s.svc.RecordSale(ctx, ledger.RecordSaleInput{
		ProductID:       uint(pid),
		Quantity:        qty,
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: addr,
	})
	if err != nil {
		return err
	}

	sale, err := s.svc.GetSale(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Sale #%d recorded, total %s\n", sale.ID, money(sale.Total))
	return nil
}

func renderSales(sales []models.Sale, withCost bool) {
	t := newTable()
	if withCost {
		t.AppendHeader(table.Row{"ID", "Date", "Product", "Qty", "Unit", "Total", "Cost", "Profit", "Customer"})
	} else {
		t.AppendHeader(table.Row{"ID", "Date", "Product", "Qty", "Unit", "Total", "Customer", "Phone"})
	}
	for _, s := range sales {
		date := s.SoldAt.Format("2006-01-02 15:04")
		if withCost {
			t.AppendRow(table.Row{s.ID, date, s.ProductName, s.Quantity,
				money(s.UnitSell), money(s.Total), money(s.CostTotal), money(s.NetProfit), s.CustomerName})
		} else {
			t.AppendRow(table.Row{s.ID, date, s.ProductName, s.Quantity,
				money(s.UnitSell), money(s.Total), s.CustomerName, s.CustomerPhone})
		}
	}
	t.Render()
	fmt.Printf("%d sale(s)\n", len(sales))
}

func (s *shell) listOrders() error {
	sales, err := s.svc.QuerySales(context.Background(), ledger.SaleFilter{})
	if err != nil {
		return err
	}
	renderSales(sales, false)
	return nil
}

func (s *shell) editSale(args []string) error {
	ctx := context.Background()
	id, err := s.idArg(args, "Sale id")
	if err != nil {
		return err
	}

	sale, err := s.svc.GetSale(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Editing sale #%d (%s, qty %d, unit %s)\n", sale.ID, sale.ProductName, sale.Quantity, money(sale.UnitSell))

	name, err := s.prompt("Customer name")
	if err != nil {
		return err
	}
	phone, err := s.prompt("Customer phone")
	if err != nil {
		return err
	}
	addr, err := s.prompt("Customer address")
	if err != nil {
		return err
	}
	qty, err := s.promptInt("New quantity")
	if err != nil {
		return err
	}
	unitSell, err := s.promptFloat("New unit sell price")
	if err != nil {
		return err
	}

	err = s.svc.EditSale(ctx, sale.ID, ledger.EditSaleInput{
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: addr,
		Quantity:        qty,
		UnitSell:        unitSell,
	})
	if err != nil {
		return err
	}
	fmt.Println("Sale updated.")
	return nil
}

func (s *shell) deleteSale(args []string) error {
	id, err := s.idArg(args, "Sale id")
	if err != nil {
		return err
	}
	if err := s.svc.DeleteSale(context.Background(), id); err != nil {
		return err
	}
	fmt.Println("Sale deleted, stock restored.")
	return nil
}

func (s *shell) writeInvoice(args []string) error {
	ctx := context.Background()
	id, err := s.idArg(args, "Sale id")
	if err != nil {
		return err
	}

	sale, err := s.svc.GetSale(ctx, id)
	if err != nil {
		return err
	}

	imagePath := ""
	if p, err := s.svc.GetProduct(ctx, sale.ProductID); err == nil {
		imagePath = p.ImagePath
	}

	path, err := invoice.WriteFile(s.cfg.InvoiceDir, invoice.Invoice{
		Sale:      sale,
		ShopName:  s.cfg.ShopName,
		ImagePath: imagePath,
	})
	if err != nil {
		return err
	}
	fmt.Println("Invoice written to", path)
	return nil
}

func (s *shell) report() error {
	query, err := s.prompt("Search (product/customer, empty for all)")
	if err != nil {
		return err
	}
	from, err := s.promptDate("From date YYYY-MM-DD (empty for none)")
	if err != nil {
		return err
	}
	to, err := s.promptDate("To date YYYY-MM-DD (empty for none)")
	if err != nil {
		return err
	}

	sales, err := s.svc.QuerySales(context.Background(), ledger.SaleFilter{Query: query, From: from, To: to})
	if err != nil {
		return err
	}
	renderSales(sales, true)

	out, err := s.prompt("Export to .xlsx file (empty to skip)")
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := report.WriteSalesXLSX(f, sales); err != nil {
		return err
	}
	fmt.Println("Exported to", out)
	return nil
}
