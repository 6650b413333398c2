package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/internal/services"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/utils"
	"github.com/valyala/fasthttp"
)

// SubscribeHandler streams live queries. Streams end when Base is cancelled.
type SubscribeHandler struct {
	Base      context.Context
	Registry  *services.Registry
	Hub       *services.Hub
	Heartbeat time.Duration
}

func NewSubscribeHandler(base context.Context, registry *services.Registry, hub *services.Hub, heartbeat time.Duration) *SubscribeHandler {
	if base == nil {
		base = context.Background()
	}
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &SubscribeHandler{Base: base, Registry: registry, Hub: hub, Heartbeat: heartbeat}
}

// Subscribe streams a live query as server-sent events: one "result" event per
// distinct value, ": ping" comments in between.
func (h *SubscribeHandler) Subscribe(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return utils.Error(c, fiber.StatusBadRequest, "path is required")
	}

	args := json.RawMessage(c.Query("args"))
	if len(args) > 0 && !json.Valid(args) {
		return utils.Error(c, fiber.StatusBadRequest, "args must be JSON")
	}

	live, err := h.Registry.Live(c.UserContext(), h.Hub, path, args)
	if err != nil {
		status, message := functionErrorStatus(err)
		return utils.Error(c, status, message)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	requestID := getRequestID(c)
	heartbeat := h.Heartbeat
	base := h.Base

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(base)
		defer cancel()

		results := make(chan json.RawMessage)
		done := make(chan error, 1)
		go func() {
			done <- live.Run(ctx, func(value json.RawMessage) error {
				select {
				case results <- value:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		}()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		logger.Info("live_query_opened", map[string]interface{}{
			"path":       live.Name(),
			"request_id": requestID,
		})
		defer logger.Info("live_query_closed", map[string]interface{}{
			"path":       live.Name(),
			"request_id": requestID,
		})

		for {
			select {
			case value := <-results:
				fmt.Fprintf(w, "event: result\ndata: %s\n\n", value)
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case err := <-done:
				if err != nil {
					logger.Error("live_query_failed", err, map[string]interface{}{
						"path":       live.Name(),
						"request_id": requestID,
					})
					payload, _ := json.Marshal(fiber.Map{"error": "live query failed"})
					fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
					_ = w.Flush()
				}
				return
			}
		}
	}))

	return nil
}
