package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/middleware"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/utils"
)

type UploadHandler struct {
	Messages *services.MessageService
}

func NewUploadHandler(messages *services.MessageService) *UploadHandler {
	return &UploadHandler{Messages: messages}
}

// SendImage answers POST /sendImage?user=&group_id=&content= with the raw file as body.
func (h *UploadHandler) SendImage(c *fiber.Ctx) error {
	if !hasQuery(c, "user") {
		return utils.Error(c, fiber.StatusBadRequest, "user is required")
	}
	if !hasQuery(c, "content") {
		return utils.Error(c, fiber.StatusBadRequest, "content is required")
	}
	groupID, err := parseUUID(c.Query("group_id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group_id")
	}

	user := c.Query("user")
	middleware.SetActor(c, user)

	body := c.Body()
	message, err := h.Messages.SendImage(c.UserContext(), body, c.Get(fiber.HeaderContentType), services.SendMessageInput{
		Content: c.Query("content"),
		GroupID: groupID,
		User:    user,
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed storing image message")
	}

	logger.InfoWithActor(user, "image_message_uploaded", map[string]interface{}{
		"message_id": message.ID.String(),
		"group_id":   groupID.String(),
		"size":       len(body),
		"request_id": getRequestID(c),
	})

	return utils.Ack(c)
}
