package http

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/observability"
)

// NewApp builds the Fiber app with the JSON codec and global middlewares.
func NewApp(appName string, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    1 << 20,
	})
	RegisterMiddlewares(app, logger, metrics, timeout)
	return app
}
