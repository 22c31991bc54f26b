package api

import (
	"net/http"
	"time"

	"api_dealership/internal/access"
	"api_dealership/internal/notify"
	"api_dealership/internal/sales"
	"api_dealership/internal/wizard"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer is wired to.
type Dependencies struct {
	Sales       *sales.Service
	Tokens      *access.Tokens
	Users       access.Users
	Allowlist   access.Allowlist
	Logger      *zap.Logger
	CORSOrigins []string
}

// InitRoutes registers every endpoint on the given Gin engine.
// It builds the handlers and the wizard registry, then binds each HTTP
// method and path to the appropriate handler function.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Allowlist == nil {
		deps.Allowlist = access.DefaultAllowlist()
	}

	if len(deps.CORSOrigins) > 0 {
		e.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	repos := deps.Sales.Repositories()
	salesHandler := NewSalesHandler(deps.Sales, logger)
	catalogHandler := &catalogHandler{clients: repos.Clients, vehicles: repos.Vehicles, logger: logger}
	wizardHandler := &wizardHandler{
		registry: wizard.NewRegistry(wizard.Deps{
			Clients:   repos.Clients,
			Vehicles:  repos.Vehicles,
			Committer: deps.Sales,
			Sink:      notify.NewZapSink(logger),
		}),
		salesService: deps.Sales,
		logger:       logger,
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	authHandler := &authHandler{users: deps.Users, tokens: deps.Tokens, logger: logger}
	e.POST("/auth/token", authHandler.handleLogin)

	api := e.Group("/api")
	api.Use(AuthMiddleware(deps.Tokens, logger))

	api.GET("/me/modules", func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		r, _ := role.(access.Role)
		c.JSON(http.StatusOK, gin.H{"role": r, "modules": deps.Allowlist.Modules(r)})
	})

	clients := api.Group("/clients", RequireModule(deps.Allowlist, access.Clients))
	clients.GET("", catalogHandler.handleListClients)

	vehicles := api.Group("/vehicles", RequireModule(deps.Allowlist, access.Vehicles))
	vehicles.GET("", catalogHandler.handleListVehicles)

	salesGroup := api.Group("/sales", RequireModule(deps.Allowlist, access.Sales))
	salesGroup.GET("", salesHandler.handleSearchSales)
	salesGroup.GET("/:id", salesHandler.handleGetSale)
	salesGroup.PATCH("/:id", salesHandler.handlePatchSale)
	salesGroup.DELETE("/:id", salesHandler.handleDeleteSale)
	salesGroup.POST("/:id/contract", salesHandler.handleGenerateContract)

	wiz := api.Group("/sale-wizard", RequireModule(deps.Allowlist, access.Sales))
	wiz.POST("", wizardHandler.handleOpen)
	wiz.GET("", wizardHandler.handleGet)
	wiz.PATCH("", wizardHandler.handleUpdate)
	wiz.DELETE("", wizardHandler.handleCancel)
	wiz.POST("/next", wizardHandler.handleNext)
	wiz.POST("/prev", wizardHandler.handlePrev)
	wiz.POST("/commit", wizardHandler.handleCommit)
}
