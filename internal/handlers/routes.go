package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	// Context bounds live query streams; cancel it on shutdown.
	Context   context.Context
	Groups    *services.GroupService
	Messages  *services.MessageService
	Files     *services.FileService
	Registry  *services.Registry
	Hub       *services.Hub
	Heartbeat time.Duration
	Info      ServerInfo
}

func RegisterRoutes(app *fiber.App, deps Deps) {
	groupsHandler := NewGroupsHandler(deps.Groups)
	messagesHandler := NewMessagesHandler(deps.Messages)
	uploadHandler := NewUploadHandler(deps.Messages)
	storageHandler := NewStorageHandler(deps.Files)
	functionsHandler := NewFunctionsHandler(deps.Registry)
	subscribeHandler := NewSubscribeHandler(deps.Context, deps.Registry, deps.Hub, deps.Heartbeat)
	versionHandler := NewVersionHandler(deps.Info, deps.Registry)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/sendImage", uploadHandler.SendImage)

	api := app.Group("/api")
	api.Get("/version", versionHandler.GetVersion)

	api.Post("/query", functionsHandler.Query)
	api.Post("/mutation", functionsHandler.Mutation)
	api.Post("/action", functionsHandler.Action)
	api.Get("/subscribe", subscribeHandler.Subscribe)

	groupRoutes := api.Group("/groups")
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Get("/:id/messages", messagesHandler.ListByGroup)

	api.Post("/messages", messagesHandler.Send)
	api.Get("/greeting", GetGreeting)

	api.Get("/storage/blobs/:id", storageHandler.Download)
}
