package controller

import (
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Ping(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
	jwtSecret      string
}

func NewChatbotController(chatbotService service.IChatbotService, jwtSecret string) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
		jwtSecret:      jwtSecret,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("ping", c.Ping)
	// Anonymous users may chat; a valid token only attributes the transcript.
	h.Post("ask", serverutils.OptionalJwtMiddleware(c.jwtSecret), c.Ask)
}

func (c *chatbotController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Ask(ctx.UserContext(), serverutils.CurrentUserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *chatbotController) Ping(ctx *fiber.Ctx) error {
	res := c.chatbotService.Ping(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Chatbot is up", res))
}
