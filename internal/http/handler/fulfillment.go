package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

type quoteRequest struct {
	Method     string  `json:"method"`
	WeightKg   float64 `json:"weight_kg"`
	DistanceKm float64 `json:"distance_km"`
	Region     string  `json:"region"`
}

type createShipmentRequest struct {
	OrderRef   string  `json:"order_ref"`
	Method     string  `json:"method"`
	WeightKg   float64 `json:"weight_kg"`
	DistanceKm float64 `json:"distance_km"`
	Region     string  `json:"region"`
}

func registerFulfillmentRoutes(g fiber.Router, d Deps) {
	g.Post("/quote", func(c *fiber.Ctx) error {
		var req quoteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		out, err := d.Fulfillment.Quote(service.QuoteInput{
			Method:     model.ShippingMethod(req.Method),
			WeightKg:   req.WeightKg,
			DistanceKm: req.DistanceKm,
			Region:     req.Region,
		})
		if err != nil {
			return writeFulfillmentError(c, err)
		}
		return c.JSON(out)
	})

	g.Post("/shipments", func(c *fiber.Ctx) error {
		var req createShipmentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		out, err := d.Fulfillment.CreateShipment(c.UserContext(), service.ShipmentInput{
			TenantID:   middleware.TenantFromCtx(c),
			OrderRef:   req.OrderRef,
			Method:     model.ShippingMethod(req.Method),
			WeightKg:   req.WeightKg,
			DistanceKm: req.DistanceKm,
			Region:     req.Region,
		})
		if err != nil {
			return writeFulfillmentError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	})

	g.Get("/shipments", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)
		out, err := d.Fulfillment.List(c.UserContext(), middleware.TenantFromCtx(c), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(out)
	})

	g.Get("/shipments/:id", func(c *fiber.Ctx) error {
		out, err := d.Fulfillment.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrShipmentNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "shipment not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(out)
	})
}

func writeFulfillmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, service.ErrOrderRefRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
