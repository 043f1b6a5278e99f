package sales

import (
	"strconv"

	"alyasmeen-backend/internal/httpx"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateSaleRequest struct {
	ProductID       uint   `json:"product_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
}

type UpdateSaleRequest struct {
	CustomerName    string   `json:"customer_name"`
	CustomerPhone   string   `json:"customer_phone"`
	CustomerAddress string   `json:"customer_address"`
	Quantity        int      `json:"quantity" validate:"required,gt=0"`
	UnitSell        *float64 `json:"unit_sell" validate:"required,gte=0"`
}

type SaleResponse struct {
	ID              uint    `json:"id"`
	SoldAt          string  `json:"sold_at"`
	ProductID       uint    `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	UnitSell        float64 `json:"unit_sell"`
	UnitCost        float64 `json:"unit_cost"`
	Total           float64 `json:"total"`
	CostTotal       float64 `json:"cost_total"`
	NetProfit       float64 `json:"net_profit"`
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerAddress string  `json:"customer_address"`
}

func toResponse(s models.Sale) SaleResponse {
	return SaleResponse{
		ID:              s.ID,
		SoldAt:          s.SoldAt.Format("2006-01-02 15:04"),
		ProductID:       s.ProductID,
		ProductName:     s.ProductName,
		Quantity:        s.Quantity,
		UnitSell:        s.UnitSell,
		UnitCost:        s.UnitCost,
		Total:           s.Total,
		CostTotal:       s.CostTotal,
		NetProfit:       s.NetProfit,
		CustomerName:    s.CustomerName,
		CustomerPhone:   s.CustomerPhone,
		CustomerAddress: s.CustomerAddress,
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid sale id")
	}
	return uint(id), nil
}

// POST /api/sales
func CreateSaleHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale data")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale data: "+err.Error())
		}

		id, err := svc.RecordSale(c.Context(), ledger.RecordSaleInput{
			ProductID:       body.ProductID,
			Quantity:        body.Quantity,
			CustomerName:    body.CustomerName,
			CustomerPhone:   body.CustomerPhone,
			CustomerAddress: body.CustomerAddress,
		})
		if err != nil {
			return httpx.Error(err)
		}

		sale, err := svc.GetSale(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(sale))
	}
}

// PUT /api/sales/:id
func UpdateSaleHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body UpdateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale data")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid sale data: "+err.Error())
		}

		err = svc.EditSale(c.Context(), id, ledger.EditSaleInput{
			CustomerName:    body.CustomerName,
			CustomerPhone:   body.CustomerPhone,
			CustomerAddress: body.CustomerAddress,
			Quantity:        body.Quantity,
			UnitSell:        *body.UnitSell,
		})
		if err != nil {
			return httpx.Error(err)
		}

		sale, err := svc.GetSale(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(toResponse(sale))
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteSale(c.Context(), id); err != nil {
			return httpx.Error(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/sales?q=...&from=YYYY-MM-DD&to=YYYY-MM-DD
func ListSalesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := filterFromQuery(c)
		if err != nil {
			return err
		}

		sales, err := svc.QuerySales(c.Context(), filter)
		if err != nil {
			return httpx.Error(err)
		}

		res := make([]SaleResponse, 0, len(sales))
		for _, s := range sales {
			res = append(res, toResponse(s))
		}
		return c.JSON(res)
	}
}
