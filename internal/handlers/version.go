package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/utils"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/groupchat/groupchat/internal/handlers.Version=1.2.3"
var Version = "dev"

const apiVersion = "v1"

// ServerInfo describes how this replica is set up.
type ServerInfo struct {
	Storage       string
	LiveRelay     bool
	UploadLimitMB int
}

type versionResponse struct {
	Version       string   `json:"version"`
	APIVersion    string   `json:"apiVersion"`
	Storage       string   `json:"storage,omitempty"`
	LiveUpdates   string   `json:"liveUpdates"`
	UploadLimitMB int      `json:"uploadLimitMb,omitempty"`
	Functions     []string `json:"functions"`
}

type VersionHandler struct {
	info     ServerInfo
	registry *services.Registry
}

func NewVersionHandler(info ServerInfo, registry *services.Registry) *VersionHandler {
	return &VersionHandler{info: info, registry: registry}
}

func (h *VersionHandler) GetVersion(c *fiber.Ctx) error {
	live := "local"
	if h.info.LiveRelay {
		live = "redis"
	}

	functions := []string{}
	if h.registry != nil {
		functions = h.registry.Names()
	}

	return utils.Success(c, fiber.StatusOK, versionResponse{
		Version:       Version,
		APIVersion:    apiVersion,
		Storage:       h.info.Storage,
		LiveUpdates:   live,
		UploadLimitMB: h.info.UploadLimitMB,
		Functions:     functions,
	})
}
