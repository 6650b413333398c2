package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/storagetoken"
	"github.com/groupchat/groupchat/pkg/utils"
)

// StorageHandler serves blobs behind signed URLs for backends that cannot presign.
type StorageHandler struct {
	Files *services.FileService
}

func NewStorageHandler(files *services.FileService) *StorageHandler {
	return &StorageHandler{Files: files}
}

func (h *StorageHandler) Download(c *fiber.Ctx) error {
	blobID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "blob not found")
	}

	if err := storagetoken.ValidateFor(c.Query("token"), "blobs/"+blobID.String()); err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	reader, blob, err := h.Files.Open(c.UserContext(), blobID.String())
	if err != nil {
		if errors.Is(err, services.ErrBlobNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "blob not found")
		}
		logger.Error("blob_download_failed", err, map[string]interface{}{
			"blob_id": blobID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed downloading blob")
	}

	c.Set(fiber.HeaderContentType, blob.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.SendStream(reader, int(blob.Size))
}
