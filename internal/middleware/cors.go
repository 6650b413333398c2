package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows the given comma separated origins. A localhost origin also admits its
// 127.0.0.1 loopback twin.
func CORS(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		origins = "*"
	}
	if strings.Contains(origins, "localhost") {
		var expanded []string
		for _, origin := range strings.Split(origins, ",") {
			origin = strings.TrimSpace(origin)
			expanded = append(expanded, origin)
			if strings.Contains(origin, "localhost") {
				expanded = append(expanded, strings.Replace(origin, "localhost", "127.0.0.1", 1))
			}
		}
		origins = strings.Join(expanded, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Cache-Control",
		AllowMethods: "GET,POST,OPTIONS",
	})
}
