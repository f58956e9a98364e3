package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/booknook/booknook-server/internal/api"
	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/config"
	"github.com/booknook/booknook-server/internal/logger"
	"github.com/booknook/booknook-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	federatedHandle := do.MustInvoke[*FederatedVerifierHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Identity:     do.MustInvoke[*service.IdentityService](i),
		Registration: do.MustInvoke[*service.RegistrationService](i),
		Auth:         do.MustInvoke[*service.AuthService](i),
		Catalog:      do.MustInvoke[*service.CatalogService](i),
		Shelf:        do.MustInvoke[*service.ShelfService](i),
		Review:       do.MustInvoke[*service.ReviewService](i),
	}

	handler := api.NewServer(
		cfg,
		storeHandle.Store,
		indexHandle.Index,
		tokenService,
		federatedHandle.Verifier,
		services,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
