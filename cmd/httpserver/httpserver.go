// Package httpserver manages server creation and api routing.
package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/mem-bank/internal/bankdelivery"
	"github.com/go-petr/mem-bank/internal/bankservice"
	"github.com/go-petr/mem-bank/internal/middleware"
	"github.com/go-petr/mem-bank/internal/registry"
	"github.com/go-petr/mem-bank/pkg/configpkg"
	"github.com/go-petr/mem-bank/pkg/metricspkg"
)

// Server holds the router and configuration.
type Server struct {
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(logger zerolog.Logger, config configpkg.Config) *Server {
	limit := config.UserConcurrencyLimit
	if limit <= 0 {
		limit = configpkg.DefaultUserConcurrencyLimit
	}

	bankRegistry := registry.New(limit)
	bankService := bankservice.New(bankRegistry)
	bankHandler := bankdelivery.NewHandler(bankService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics())
	engine.Use(gin.Recovery())

	engine.POST("/users", bankHandler.CreateUser)
	engine.GET("/users/:username/balance", bankHandler.Balance)
	engine.POST("/users/:username/deposit", bankHandler.Deposit)
	engine.POST("/users/:username/withdraw", bankHandler.Withdraw)
	engine.POST("/transfers", bankHandler.Transfer)

	engine.GET("/metrics", gin.WrapH(metricspkg.Handler()))

	return &Server{
		Engine: engine,
		Config: config,
	}
}
