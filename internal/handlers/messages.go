package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/middleware"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/utils"
)

type MessagesHandler struct {
	Messages *services.MessageService
}

func NewMessagesHandler(messages *services.MessageService) *MessagesHandler {
	return &MessagesHandler{Messages: messages}
}

type sendMessageRequest struct {
	Content string  `json:"content"`
	GroupID string  `json:"group_id"`
	User    string  `json:"user"`
	File    *string `json:"file"`
}

func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	groupID, err := parseUUID(req.GroupID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group_id")
	}
	middleware.SetActor(c, req.User)

	message, err := h.Messages.Send(c.UserContext(), services.SendMessageInput{
		Content: req.Content,
		GroupID: groupID,
		User:    req.User,
		File:    req.File,
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed sending message")
	}

	return utils.Success(c, fiber.StatusCreated, message)
}

// ListByGroup answers GET /api/groups/:id/messages. Unknown groups yield an empty list.
func (h *MessagesHandler) ListByGroup(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	messages, err := h.Messages.ListByGroup(c.UserContext(), groupID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing messages")
	}
	return utils.Success(c, fiber.StatusOK, messages)
}
