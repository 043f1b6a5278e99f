package inventory

import (
	"alyasmeen-backend/internal/httpx"
	"alyasmeen-backend/internal/ledger"
	"alyasmeen-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type CreateProductRequest struct {
	Name        string  `json:"name" form:"name" validate:"required"`
	Description string  `json:"description" form:"description"`
	Quantity    int     `json:"quantity" form:"quantity" validate:"gte=0"`
	CostPrice   float64 `json:"cost_price" form:"cost_price" validate:"gte=0"`
	SellPrice   float64 `json:"sell_price" form:"sell_price" validate:"gte=0"`
}

type ProductResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	CostPrice   float64 `json:"cost_price"`
	SellPrice   float64 `json:"sell_price"`
	ImagePath   string  `json:"image_path"`
}

// POST /api/products — JSON body or multipart form with an optional "image"
// file. A failed image copy is logged and the product is saved without one.
func CreateProductHandler(svc *ledger.Service, images *ImageStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product data")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid product data: "+err.Error())
		}

		imagePath := ""
		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			stored, copyErr := images.SaveUpload(fh)
			if copyErr != nil {
				logrus.WithError(copyErr).Warn("image copy failed, saving product without image")
			} else {
				imagePath = stored
			}
		}

		id, err := svc.AddProduct(c.Context(), ledger.AddProductInput{
			Name:        body.Name,
			Description: body.Description,
			Quantity:    body.Quantity,
			CostPrice:   body.CostPrice,
			SellPrice:   body.SellPrice,
			ImagePath:   imagePath,
		})
		if err != nil {
			return httpx.Error(err)
		}

		p, err := svc.GetProduct(c.Context(), id)
		if err != nil {
			return httpx.Error(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(p))
	}
}

// GET /api/products
func ListProductsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.ListProducts(c.Context())
		if err != nil {
			return httpx.Error(err)
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toResponse(p))
		}
		return c.JSON(res)
	}
}

func toResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		CostPrice:   p.CostPrice,
		SellPrice:   p.SellPrice,
		ImagePath:   p.ImagePath,
	}
}
