// Package router provides HTTP routing, middleware configuration, and server setup for the dialer API
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/amirphl/sdr-power-queue/app/dto"
	"github.com/amirphl/sdr-power-queue/app/handlers"
	"github.com/amirphl/sdr-power-queue/app/middleware"
	_ "github.com/amirphl/sdr-power-queue/docs"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown() error
	GetApp() *fiber.App
}

// Options carries the server settings the router needs from configuration
type Options struct {
	AppName      string
	Version      string
	Environment  string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration // 0 keeps /events open
	IdleTimeout  time.Duration

	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration

	MetricsEnabled bool
	MetricsPath    string
	DocsEnabled    bool
}

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Contacts handlers.ContactHandlerInterface
	Queue    handlers.QueueHandlerInterface
	Calls    handlers.CallHandlerInterface
	Export   *handlers.ExportHandler
	Events   *handlers.EventsHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	opts     Options
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(opts Options, h Handlers, auth *middleware.AuthMiddleware) Router {
	if opts.AppName == "" {
		opts.AppName = "SDR Power Queue API"
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 4 * 1024 * 1024 // 4MB
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		ServerHeader: "sdr-power-queue",
		ErrorHandler: errorHandler,
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		opts:     opts,
		handlers: h,
		auth:     auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.opts.MetricsEnabled {
		r.app.Get(r.opts.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.opts.DocsEnabled {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Println("API documentation enabled")
	}

	if r.opts.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        r.opts.RateLimit,
			Expiration: r.opts.RateWindow,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
					Success: false,
					Message: "Too many requests. Please try again later.",
					Error: dto.ErrorDetail{
						Code: "RATE_LIMIT_EXCEEDED",
					},
				})
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || strings.HasSuffix(c.Path(), "/events")
			},
		}))
	}

	// Everything below acts on the operator scope carried by the bearer token
	protected := api.Group("", r.auth.Authenticate())

	queue := protected.Group("/queue")
	queue.Get("/", r.handlers.Queue.Queue)
	queue.Get("/next", r.handlers.Queue.Next)
	queue.Post("/next/calls", r.handlers.Queue.LogNext)
	queue.Post("/reorder", r.handlers.Queue.Reorder)
	queue.Post("/move", r.handlers.Queue.Move)

	contacts := protected.Group("/contacts")
	contacts.Get("/", r.handlers.Contacts.List)
	contacts.Post("/", r.handlers.Contacts.Create)
	contacts.Get("/:id", r.handlers.Contacts.Get)
	contacts.Patch("/:id", r.handlers.Contacts.Update)
	contacts.Delete("/:id", r.handlers.Contacts.Delete)
	contacts.Put("/:id/notes", r.handlers.Contacts.UpdateNotes)
	contacts.Post("/:id/dnc", r.handlers.Contacts.ToggleDNC)
	contacts.Get("/:id/dial", r.handlers.Contacts.Dial)
	contacts.Get("/:id/calls", r.handlers.Calls.History)
	contacts.Post("/:id/calls", r.handlers.Calls.LogCall)

	protected.Get("/stats", r.handlers.Calls.Stats)

	block := protected.Group("/block")
	block.Get("/", r.handlers.Calls.BlockStatus)
	block.Post("/start", r.handlers.Calls.StartBlock)
	block.Post("/end", r.handlers.Calls.EndBlock)

	protected.Get("/events", r.handlers.Events.Stream)

	export := protected.Group("/export")
	export.Get("/contacts.csv", r.handlers.Export.ContactsCSV)
	export.Get("/contacts.xlsx", r.handlers.Export.ContactsExcel)
	export.Get("/backup.json", r.handlers.Export.Backup)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:; connect-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	origins := r.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !contains(strings.Join(origins, ","), "*"),
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/events") || c.Path() == r.opts.MetricsPath
		},
	}))

	r.app.Use(middleware.Metrics("/events", r.opts.MetricsPath))

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == r.opts.MetricsPath
		},
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for open requests
func (r *FiberRouter) Shutdown() error {
	return r.app.Shutdown()
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":      "ok",
			"timestamp":   utils.UTCNow().Unix(),
			"version":     r.opts.Version,
			"environment": r.opts.Environment,
			"service":     "sdr-power-queue",
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>SDR Power Queue API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

	c.Set("Content-Type", "text/html")
	return c.SendString(htmlContent)
}

// Serve the OpenAPI document registered by the docs package
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errCode := "INTERNAL_ERROR"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errCode = "REQUEST_ERROR"
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}
