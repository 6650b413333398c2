package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/groupchat/groupchat/pkg/logger"
)

// ActorKey holds the chat author label of the current request, when it carries one.
const ActorKey = "actor"

func SetActor(c *fiber.Ctx, actor string) {
	if actor != "" {
		c.Locals(ActorKey, actor)
	}
}

func GetActor(c *fiber.Ctx) *string {
	if actor, ok := c.Locals(ActorKey).(string); ok && actor != "" {
		return &actor
	}
	return nil
}

// statusOf reports the status the response will carry, including errors the
// app error handler has not written yet.
func statusOf(c *fiber.Ctx, err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return c.Response().StatusCode()
}

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		latency := time.Since(start)
		statusCode := statusOf(c, err)

		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    latency.Milliseconds(),
			"user_agent":    c.Get("User-Agent"),
			"ip":            c.IP(),
			"request_body":  logger.GetRequestBodySummary(c),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}

		actor := GetActor(c)
		if actor != nil {
			if statusCode >= 400 {
				logger.ErrorWithActor(*actor, "http_request", err, details)
			} else {
				logger.InfoWithActor(*actor, "http_request", details)
			}
		} else {
			if statusCode >= 400 {
				logger.Error("http_request", err, details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

// SecurityLogger records rejected storage tokens and unknown routes.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		statusCode := statusOf(c, err)
		var reason string
		switch statusCode {
		case fiber.StatusUnauthorized:
			reason = "invalid_token"
		case fiber.StatusNotFound:
			reason = "not_found"
		default:
			return err
		}

		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
			"reason": reason,
		}

		if actor := GetActor(c); actor != nil {
			logger.WarnWithActor(*actor, reason, details)
		} else {
			logger.Warn(reason, details)
		}

		return err
	}
}
