package api

import (
	"github.com/Mranger2024/plasticwatcha/internal/contributions"
	"github.com/Mranger2024/plasticwatcha/internal/review"
	"github.com/Mranger2024/plasticwatcha/internal/stats"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Contributions contributions.System
	Review        review.System
	Stats         stats.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	contributionsSystem := contributions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	reviewSystem := review.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	statsSystem := stats.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	return &Domain{
		Contributions: contributionsSystem,
		Review:        reviewSystem,
		Stats:         statsSystem,
	}
}
