// Command desktop is the terminal front-end. It is a peer of the web server:
// it opens the same store file and calls the same ledger operations, so both
// front-ends can be used against one shop interchangeably.
package main

import (
	"context"
	"fmt"
	"os"

	"alyasmeen-backend/internal/config"
	"alyasmeen-backend/internal/database"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/report"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "desktop",
		Short:        "Interactive console for the shop's ledger",
		Long:         "Opens the shop's store file and starts an interactive console: dashboard, products, sales, reports, invoices.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := openLedger()
			if err != nil {
				return err
			}
			sh, err := newShell(svc, cfg)
			if err != nil {
				return err
			}
			defer sh.Close()
			return sh.Run()
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print today / month-to-date / all-time totals and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openLedger()
			if err != nil {
				return err
			}
			return renderStats(context.Background(), svc)
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export all sales to a spreadsheet and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openLedger()
			if err != nil {
				return err
			}

			sales, err := svc.QuerySales(context.Background(), ledger.SaleFilter{})
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := report.WriteSalesXLSX(f, sales); err != nil {
				return err
			}
			fmt.Printf("%d sale(s) exported to %s\n", len(sales), args[0])
			return nil
		},
	}

	root.AddCommand(statsCmd, exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openLedger() (*ledger.Service, *config.Config, error) {
	cfg := config.Load()
	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("store unavailable: %w", err)
	}
	return ledger.NewService(db), cfg, nil
}
