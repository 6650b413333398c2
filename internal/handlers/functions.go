package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/utils"
)

type FunctionsHandler struct {
	Registry *services.Registry
}

func NewFunctionsHandler(registry *services.Registry) *FunctionsHandler {
	return &FunctionsHandler{Registry: registry}
}

type functionRequest struct {
	Path string          `json:"path"`
	Args json.RawMessage `json:"args"`
}

func (h *FunctionsHandler) Query(c *fiber.Ctx) error {
	return h.call(c, services.KindQuery)
}

func (h *FunctionsHandler) Mutation(c *fiber.Ctx) error {
	return h.call(c, services.KindMutation)
}

func (h *FunctionsHandler) Action(c *fiber.Ctx) error {
	return h.call(c, services.KindAction)
}

func (h *FunctionsHandler) call(c *fiber.Ctx, kind services.FunctionKind) error {
	var req functionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return utils.Error(c, fiber.StatusBadRequest, "path is required")
	}

	result, err := h.Registry.Call(c.UserContext(), kind, req.Path, req.Args)
	if err != nil {
		status, message := functionErrorStatus(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("function_call_failed", err, map[string]interface{}{
				"path":       req.Path,
				"kind":       string(kind),
				"request_id": getRequestID(c),
			})
		}
		return utils.Error(c, status, message)
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func functionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrFunctionNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrWrongFunctionKind), errors.Is(err, services.ErrInvalidArgs):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "function call failed"
	}
}
