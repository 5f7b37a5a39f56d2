package routes

import (
	"errors"
	"log"
	"time"

	"FormCraft-Backend/src/controllers"
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/utils"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// Handlers bundles the controllers and the auth middleware.
type Handlers struct {
	Auth        *middleware.Auth
	AuthCtl     *controllers.AuthController
	Users       *controllers.UserController
	Forms       *controllers.FormController
	Submissions *controllers.SubmissionController
	Uploads     *controllers.UploadController
	Health      *controllers.HealthController
}

// Options tune the HTTP stack.
type Options struct {
	AllowOrigins string
	BodyLimit    int
	// Metrics registers the prometheus collectors; only one app per process may enable it.
	Metrics bool
	// AccessLog enables the request logger.
	AccessLog bool
	// LoginLimit is the number of login attempts per IP and minute; 0 disables the limiter.
	LoginLimit int
}

// NewApp builds the Fiber app with every route mounted.
func NewApp(h Handlers, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    opts.BodyLimit,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	origins := opts.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false, // must stay false while origins is "*"
	}))

	if opts.Metrics {
		prometheus := fiberprometheus.New("formcraft")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", h.Health.Health)

	api := app.Group("/api")
	authRoutes(api, h, opts.LoginLimit)
	userRoutes(api, h)
	formRoutes(api, h)
	submissionRoutes(api, h)
	uploadRoutes(api, h)

	app.Use(func(c *fiber.Ctx) error {
		return utils.HandleError(c, fiber.StatusNotFound, "Resource not found: "+c.OriginalURL())
	})
	return app
}

func loginLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.HandleError(c, fiber.StatusTooManyRequests, "Too many login attempts, please try again later")
		},
	})
}

// errorHandler renders *fiber.Error and recovered panics in the common error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("❌ %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(code).JSON(models.ErrorResponse{Status: code, Message: message})
}
