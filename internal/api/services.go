package api

import (
	"github.com/booknook/booknook-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Identity     *service.IdentityService
	Registration *service.RegistrationService
	Auth         *service.AuthService
	Catalog      *service.CatalogService
	Shelf        *service.ShelfService
	Review       *service.ReviewService
}
