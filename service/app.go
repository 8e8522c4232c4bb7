package service

import (
	"context"
	"fmt"

	"quill/app/repositories"
	"quill/app/routes"
	"quill/app/services"
	"quill/config"

	"github.com/rs/zerolog/log"
)

// RunAppServer serves the blog API until ctx is cancelled.
func RunAppServer(ctx context.Context, cfg *config.AppConfig) error {
	repo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	postService := services.NewPostService(repositories.Instrument(repo), serviceSettings(cfg))
	handler := routes.NewHandler(postService, routes.Options{
		AuthorPasswordHash: cfg.Server.AuthorPasswordHash,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
	})

	log.Info().
		Str("driver", cfg.Storage.Driver).
		Str("path", cfg.Storage.Path).
		Bool("auth", cfg.Server.AuthorPasswordHash != "").
		Msg("Store opened")

	return routes.StartServer(ctx, cfg.Server.Addr, handler)
}
