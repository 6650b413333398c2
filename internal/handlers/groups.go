package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/utils"
)

type GroupsHandler struct {
	Groups *services.GroupService
}

func NewGroupsHandler(groups *services.GroupService) *GroupsHandler {
	return &GroupsHandler{Groups: groups}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.Groups.Create(c.UserContext(), req.Name, req.Description, req.IconURL)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.Groups.List(c.UserContext())
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}
	return utils.Success(c, fiber.StatusOK, groups)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Groups.Get(c.UserContext(), groupID)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "group not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}
