package api

import (
	"net/http"

	"github.com/Mranger2024/plasticwatcha/internal/config"
	"github.com/Mranger2024/plasticwatcha/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Contributions.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Review.Handler().Routes(),
		domain.Stats.Handler().Routes(),
	)
}
