package controller

import (
	"econote-be/internal/dto"
	"econote-be/internal/pkg/serverutils"
	"econote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPageController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Scan(ctx *fiber.Ctx) error
	RequestOCR(ctx *fiber.Ctx) error
	ExportPNG(ctx *fiber.Ctx) error
}

type pageController struct {
	service   service.IPageService
	jwtSecret string
}

func NewPageController(service service.IPageService, jwtSecret string) IPageController {
	return &pageController{service: service, jwtSecret: jwtSecret}
}

func (c *pageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/page/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.Create)
	h.Post("scan", c.Scan)
	h.Get(":id/export.png", c.ExportPNG)
	h.Post(":id/ocr", c.RequestOCR)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *pageController) Create(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)

	var req dto.CreatePageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError(err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create page", res))
}

func (c *pageController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show page", res))
}

func (c *pageController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdatePageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError(err)
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update page", res))
}

func (c *pageController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.DeletePageRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.NewBadRequestError(err)
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete page", nil))
}

func (c *pageController) Scan(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)

	var req dto.ScanPageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError(err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Scan(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success scan page", res))
}

func (c *pageController) RequestOCR(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.RequestOcrRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.NewBadRequestError(err)
		}
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RequestOCR(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success queue ocr", res))
}

func (c *pageController) ExportPNG(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return err
	}

	img, err := c.service.ExportPNG(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	return ctx.Send(img)
}
