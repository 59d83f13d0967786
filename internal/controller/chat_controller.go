package controller

import (
	"ai-booktutor-be/internal/dto"
	"ai-booktutor-be/internal/pkg/serverutils"
	"ai-booktutor-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Ping(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService    service.IChatService
	historyService service.IChatHistoryService
}

func NewChatController(chatService service.IChatService, historyService service.IChatHistoryService) IChatController {
	return &chatController{
		chatService:    chatService,
		historyService: historyService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("ping", c.Ping)
	h.Use(serverutils.JwtMiddleware)
	h.Post("send", c.Send)
	h.Get("history/:bookId", c.History)
	h.Delete("history/:bookId", c.Clear)
}

func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SendTurnRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.chatService.SendTurn(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Turn processed", res)
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}

	bookId, err := uuid.Parse(ctx.Params("bookId"))
	if err != nil {
		return serverutils.NewBadRequestError("Invalid book id")
	}

	res, err := c.historyService.History(ctx.Context(), userId, bookId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success get chat history", res)
}

func (c *chatController) Clear(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}

	bookId, err := uuid.Parse(ctx.Params("bookId"))
	if err != nil {
		return serverutils.NewBadRequestError("Invalid book id")
	}

	if err := c.historyService.Clear(ctx.Context(), userId, bookId); err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Chat history cleared", nil)
}

func (c *chatController) Ping(ctx *fiber.Ctx) error {
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Ping", c.chatService.Ping(ctx.Context()))
}
