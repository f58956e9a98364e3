// Package service implements the application's business logic on top of the
// store, keyed by the authenticated principal of each request.
package service

import (
	"github.com/booknook/booknook-server/internal/validation"

	domainerrors "github.com/booknook/booknook-server/internal/errors"
)

// validate is the shared request validator for all services.
var validate = validation.New()

// Ownable is any resource with a single owning user.
type Ownable interface {
	OwnedBy(userID string) bool
}

// requireOwner rejects access to a resource the user does not own.
// Ownership comparison is by canonical user ID.
func requireOwner(resource Ownable, userID string) error {
	if !resource.OwnedBy(userID) {
		return domainerrors.Forbidden("you do not own this resource")
	}
	return nil
}
