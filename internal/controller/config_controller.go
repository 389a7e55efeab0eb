package controller

import (
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConfigController interface {
	RegisterRoutes(r fiber.Router)
	GetChatMode(ctx *fiber.Ctx) error
	SetChatMode(ctx *fiber.Ctx) error
	GetPromptSettings(ctx *fiber.Ctx) error
}

type configController struct {
	configService service.IConfigService
	jwtSecret     string
}

func NewConfigController(configService service.IConfigService, jwtSecret string) IConfigController {
	return &configController{
		configService: configService,
		jwtSecret:     jwtSecret,
	}
}

func (c *configController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/config/v1")
	h.Get("chat-mode", c.GetChatMode)
	h.Post("chat-mode", serverutils.JwtMiddleware(c.jwtSecret), c.SetChatMode)
	h.Get("prompt-settings", c.GetPromptSettings)
}

func (c *configController) GetChatMode(ctx *fiber.Ctx) error {
	mode := c.configService.GetMode(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Current chat mode", dto.ChatModeResponse{Mode: mode}))
}

func (c *configController) SetChatMode(ctx *fiber.Ctx) error {
	var req dto.SetChatModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	mode, err := c.configService.SetMode(ctx.UserContext(), req.Mode)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chat mode", dto.ChatModeResponse{Mode: mode}))
}

func (c *configController) GetPromptSettings(ctx *fiber.Ctx) error {
	settings := c.configService.GetPromptSettings(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Current prompt settings", settings))
}
