package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/utils"
)

func GetGreeting(c *fiber.Ctx) error {
	if !hasQuery(c, "name") {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}
	return utils.Success(c, fiber.StatusOK, services.Greeting(c.Query("name")))
}
