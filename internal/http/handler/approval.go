package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

type submitApprovalRequest struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	AssetID string `json:"asset_id"`
	Actor   string `json:"actor"`
}

type decideRequest struct {
	Decision string `json:"decision"` // approve or reject
	Actor    string `json:"actor"`
	Note     string `json:"note"`
}

type escalateRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note"`
}

type startReviewRequest struct {
	Actor string `json:"actor"`
}

func registerApprovalRoutes(g fiber.Router, d Deps) {
	g.Post("/requests", func(c *fiber.Ctx) error {
		var req submitApprovalRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		out, err := d.Approvals.Submit(c.UserContext(), service.SubmitInput{
			TenantID: middleware.TenantFromCtx(c),
			Kind:     model.RequestKind(req.Kind),
			Title:    req.Title,
			Body:     req.Body,
			AssetID:  req.AssetID,
			Actor:    req.Actor,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrBodyRequired):
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	})

	g.Get("/requests", func(c *fiber.Ctx) error {
		state := model.ApprovalState(c.Query("state"))
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)
		out, err := d.Approvals.List(c.UserContext(), middleware.TenantFromCtx(c), state, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(out)
	})

	g.Get("/requests/:id", func(c *fiber.Ctx) error {
		req, events, err := d.Approvals.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrRequestNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "approval request not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"request": req, "events": events})
	})

	g.Post("/requests/:id/review", func(c *fiber.Ctx) error {
		var req startReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		out, err := d.Approvals.StartReview(c.UserContext(), c.Params("id"), req.Actor)
		if err != nil {
			return writeApprovalError(c, err)
		}
		return c.JSON(out)
	})

	g.Post("/requests/:id/decision", func(c *fiber.Ctx) error {
		var req decideRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		if req.Decision != "approve" && req.Decision != "reject" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DECISION", "decision must be approve or reject")
		}
		out, err := d.Approvals.Decide(c.UserContext(), c.Params("id"), service.Decision{
			Actor:   req.Actor,
			Approve: req.Decision == "approve",
			Note:    req.Note,
		})
		if err != nil {
			return writeApprovalError(c, err)
		}
		return c.JSON(out)
	})

	g.Post("/requests/:id/escalate", func(c *fiber.Ctx) error {
		var req escalateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		out, err := d.Approvals.Escalate(c.UserContext(), c.Params("id"), req.Actor, req.Note)
		if err != nil {
			return writeApprovalError(c, err)
		}
		return c.JSON(out)
	})

	registerAssetRoutes(g, d)
}

func writeApprovalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "approval request not found")
	case errors.Is(err, service.ErrNotDecidable):
		return writeError(c, fiber.StatusConflict, "NOT_DECIDABLE", "request is not awaiting a decision")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// Content assets: the creative files reviewers inspect alongside a request.
func registerAssetRoutes(g fiber.Router, d Deps) {
	g.Post("/assets", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "multipart field 'file' is required")
		}
		f, err := fileHeader.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_UNREADABLE", "uploaded file could not be read")
		}
		defer f.Close()

		asset, err := d.Assets.Upload(
			c.UserContext(),
			middleware.TenantFromCtx(c),
			f,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
			fileHeader.Size,
		)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "could not store asset")
		}
		return c.Status(fiber.StatusCreated).JSON(asset)
	})

	g.Get("/assets/:id", func(c *fiber.Ctx) error {
		out, err := d.Assets.Download(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrAssetNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "content asset not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(out)
	})

	g.Delete("/assets/:id", func(c *fiber.Ctx) error {
		if err := d.Assets.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrAssetNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "content asset not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
