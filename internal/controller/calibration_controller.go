package controller

import (
	"econote-be/internal/dto"
	"econote-be/internal/pkg/serverutils"
	"econote-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICalibrationController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type calibrationController struct {
	service   service.ICalibrationService
	jwtSecret string
}

func NewCalibrationController(service service.ICalibrationService, jwtSecret string) ICalibrationController {
	return &calibrationController{service: service, jwtSecret: jwtSecret}
}

func (c *calibrationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calibration/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Delete("", c.Reset)
}

func (c *calibrationController) Show(ctx *fiber.Ctx) error {
	res := c.service.Get(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success show calibration", res))
}

func (c *calibrationController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)

	var req dto.UpdateCalibrationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError(err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.Update(ctx.Context(), userId, &req)
	return ctx.JSON(serverutils.SuccessResponse("Success update calibration", res))
}

func (c *calibrationController) Reset(ctx *fiber.Ctx) error {
	res := c.service.Reset(ctx.Context(), serverutils.UserID(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success reset calibration", res))
}
