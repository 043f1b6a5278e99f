// Package httpx maps ledger errors onto HTTP responses so every handler
// package reports the taxonomy the same way.
package httpx

import (
	"errors"

	"alyasmeen-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Error converts a ledger error into a fiber error: validation to 400, not
// found to 404, everything else (persistence) to 500.
func Error(err error) error {
	var vErr *ledger.ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
	}
	var nfErr *ledger.NotFoundError
	if errors.As(err, &nfErr) {
		return fiber.NewError(fiber.StatusNotFound, nfErr.Error())
	}
	logrus.WithError(err).Error("storage failure")
	return fiber.NewError(fiber.StatusInternalServerError, "Storage failure, nothing was changed")
}
