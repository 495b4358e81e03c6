// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/internal/config"
	"github.com/Mranger2024/plasticwatcha/internal/infrastructure"
	"github.com/Mranger2024/plasticwatcha/pkg/middleware"
	"github.com/Mranger2024/plasticwatcha/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Authenticate(runtime.Auth, runtime.Logger))

	return m, nil
}
