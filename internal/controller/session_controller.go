package controller

import (
	"econote-be/internal/dto"
	"econote-be/internal/pkg/serverutils"
	"econote-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	Pointer(ctx *fiber.Ctx) error
	Touch(ctx *fiber.Ctx) error
	UpdateTool(ctx *fiber.Ctx) error
	Zoom(ctx *fiber.Ctx) error
	Undo(ctx *fiber.Ctx) error
	Redo(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Render(ctx *fiber.Ctx) error
	Next(ctx *fiber.Ctx) error
	Previous(ctx *fiber.Ctx) error
	SwitchPage(ctx *fiber.Ctx) error
	CreatePage(ctx *fiber.Ctx) error
	DeletePage(ctx *fiber.Ctx) error
	StartCalibration(ctx *fiber.Ctx) error
	CaptureCalibration(ctx *fiber.Ctx) error
}

type sessionController struct {
	service   service.ISessionService
	jwtSecret string
}

func NewSessionController(service service.ISessionService, jwtSecret string) ISessionController {
	return &sessionController{service: service, jwtSecret: jwtSecret}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("", c.Open)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Close)

	h.Post(":id/pointer", c.Pointer)
	h.Post(":id/touch", c.Touch)
	h.Put(":id/tool", c.UpdateTool)
	h.Post(":id/zoom", c.Zoom)
	h.Post(":id/undo", c.Undo)
	h.Post(":id/redo", c.Redo)
	h.Post(":id/clear", c.Clear)
	h.Post(":id/save", c.Save)
	h.Get(":id/render.png", c.Render)

	h.Post(":id/next", c.Next)
	h.Post(":id/previous", c.Previous)
	h.Post(":id/switch", c.SwitchPage)
	h.Post(":id/pages", c.CreatePage)
	h.Delete(":id/pages/:pageId", c.DeletePage)

	h.Post(":id/calibration/start", c.StartCalibration)
	h.Post(":id/calibration/capture", c.CaptureCalibration)
}

// ids reads the caller and the session id from the request.
func ids(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	id, err := serverutils.ParamUUID(ctx, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return serverutils.UserID(ctx), id, nil
}

// parse binds and validates a JSON body.
func parse(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return serverutils.NewBadRequestError(err)
	}
	return serverutils.ValidateRequest(req)
}

func (c *sessionController) Open(ctx *fiber.Ctx) error {
	userId := serverutils.UserID(ctx)

	var req dto.OpenSessionRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Open(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Close(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Close(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close session", nil))
}

func (c *sessionController) Pointer(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.PointerEventRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Pointer(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success pointer event", res))
}

func (c *sessionController) Touch(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.TouchEventRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Touch(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success touch event", res))
}

func (c *sessionController) UpdateTool(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateToolRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateTool(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update tool", res))
}

func (c *sessionController) Zoom(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.ZoomRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Zoom(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success zoom", res))
}

func (c *sessionController) Undo(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Undo(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success undo", res))
}

func (c *sessionController) Redo(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Redo(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success redo", res))
}

func (c *sessionController) Clear(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Clear(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear", res))
}

// Save persists the page and answers with the PNG download.
func (c *sessionController) Save(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	img, err := c.service.Save(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="page.png"`)
	return ctx.Send(img)
}

func (c *sessionController) Render(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	img, err := c.service.Render(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	return ctx.Send(img)
}

func (c *sessionController) Next(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Next(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success next page", res))
}

func (c *sessionController) Previous(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Previous(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success previous page", res))
}

func (c *sessionController) SwitchPage(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.SwitchPageRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SwitchPage(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success switch page", res))
}

func (c *sessionController) CreatePage(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.SessionCreatePageRequest
	if len(ctx.Body()) > 0 {
		if err := parse(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.CreatePage(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create page", res))
}

func (c *sessionController) DeletePage(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}
	pageId, err := serverutils.ParamUUID(ctx, "pageId")
	if err != nil {
		return err
	}

	res, err := c.service.DeletePage(ctx.Context(), userId, id, pageId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete page", res))
}

func (c *sessionController) StartCalibration(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.StartCalibrationRequest
	if len(ctx.Body()) > 0 {
		if err := parse(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.StartCalibration(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start calibration", res))
}

func (c *sessionController) CaptureCalibration(ctx *fiber.Ctx) error {
	userId, id, err := ids(ctx)
	if err != nil {
		return err
	}

	var req dto.CaptureCalibrationRequest
	if err := parse(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CaptureCalibration(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success capture calibration", res))
}
