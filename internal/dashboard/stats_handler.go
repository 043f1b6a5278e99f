package dashboard

import (
	"alyasmeen-backend/internal/httpx"
	"alyasmeen-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

type StatsResponse struct {
	Today ledger.Stats `json:"today"`
	Month ledger.Stats `json:"month"`
	Total ledger.Stats `json:"total"`
}

// GET /api/dashboard/stats — the today / month-to-date / all-time cards.
func StatsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		today, err := svc.AggregateStats(c.Context(), ledger.PeriodToday)
		if err != nil {
			return httpx.Error(err)
		}
		month, err := svc.AggregateStats(c.Context(), ledger.PeriodMonth)
		if err != nil {
			return httpx.Error(err)
		}
		total, err := svc.AggregateStats(c.Context(), ledger.PeriodAll)
		if err != nil {
			return httpx.Error(err)
		}

		return c.JSON(StatsResponse{Today: today, Month: month, Total: total})
	}
}
