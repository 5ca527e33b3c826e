package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	globalConfig "github.com/slaxmankiran/aitravel-app-sub008/config"
	"github.com/slaxmankiran/aitravel-app-sub008/ui/rest"
	"github.com/slaxmankiran/aitravel-app-sub008/ui/rest/middleware"
	"github.com/slaxmankiran/aitravel-app-sub008/ui/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the travel planner API over http",
	Long:  `Start the REST API plus the websocket hub that streams speculative generation progress to the frontend.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               (globalConfig.TripMaxCoverSizeMB + 1) * 1024 * 1024,
		Network:                 "tcp",
		AppName:                 "AI Travel Planner",
		DisableStartupMessage:   false,
		ServerHeader:            "Hidden",
	}

	// Configure proxy settings if trusted proxies are specified
	if len(globalConfig.AppTrustedProxies) > 0 {
		fiberConfig.TrustedProxies = globalConfig.AppTrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(globalConfig.AppCorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())

	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; font-src 'self' https://fonts.gstatic.com; img-src 'self' data: https:; connect-src 'self' http://localhost:* ws://localhost:*;",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	// System statics (covers, cached imagery)
	app.Static(globalConfig.AppBasePath+"/statics", "./statics")

	// Create API group
	apiGroup := app.Group(globalConfig.AppBasePath + "/api")

	// Basic auth is optional: when credentials are configured only the API
	// group requires them, CORS preflights stay open.
	if len(globalConfig.AppBasicAuthCredential) > 0 {
		account := parseBasicAuthAccounts(globalConfig.AppBasicAuthCredential)
		apiGroup.Use(basicauth.New(basicauth.Config{
			Users: account,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
		}))
	}

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		StopApp()
	}()

	// Register handlers
	rest.InitRestTrip(apiGroup, tripUsecase)
	rest.InitRestPlanner(apiGroup, plannerUsecase)
	rest.InitRestDirections(apiGroup, directionsUsecase)
	rest.InitRestImagery(apiGroup, imageryUsecase)
	rest.InitRestSettings(apiGroup, settingsUsecase)
	rest.InitRestCache(apiGroup, mediaCacheUsecase)
	rest.InitRestHealth(apiGroup, healthUsecase)
	rest.InitRestMonitoring(apiGroup, monitor, planPool, plannerUsecase)

	// Websocket (the hub itself is started in initApp)
	websocket.RegisterRoutes(apiGroup, plannerUsecase)

	// 404 Handler ONLY for API group to prevent fallthrough to SPA fallback
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Static assets from frontend/dist
	app.Use(globalConfig.AppBasePath+"/", filesystem.New(filesystem.Config{
		Root:       http.FS(EmbedFrontend),
		PathPrefix: "frontend/dist",
		Browse:     false,
		Index:      "index.html",
	}))

	// SPA Fallback: Serve index.html for any unknown routes
	app.Get(globalConfig.AppBasePath+"/*", func(c *fiber.Ctx) error {
		path := c.Path()
		// If it has a dot, it's a file that should have been caught by the
		// filesystem middleware; API and statics have their own handlers.
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/statics") || strings.Contains(path, ".") {
			return c.Next()
		}

		file, err := EmbedFrontend.ReadFile("frontend/dist/index.html")
		if err != nil {
			return c.Status(fiber.StatusNotFound).SendString("Frontend not found")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(file)
	})

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
