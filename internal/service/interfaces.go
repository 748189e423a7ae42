// Package service contains the business logic of the interaction engine.
// Services validate input, enforce visibility and authorship, and delegate
// persistence to the repository layer.
package service

import (
	"context"

	"pulse/internal/models"
)

// VisibilityResolver answers read and moderation predicates against the
// external social graph and scope membership. Implementations must be fast
// and side-effect free; any backend failure makes the caller fail closed.
type VisibilityResolver interface {
	// CanView reports whether viewerID may read content by authorID with the
	// given visibility. scopeID is set iff visibility is SCOPE.
	CanView(ctx context.Context, viewerID, authorID uint, scopeID *uint, visibility models.Visibility) (bool, error)
	// CanModerate reports whether userID moderates the given scope.
	CanModerate(ctx context.Context, userID, scopeID uint) (bool, error)
}

// IdentityDirectory resolves display snapshots for user ids owned by the
// external identity service. Lookup misses return (nil, nil).
type IdentityDirectory interface {
	Lookup(ctx context.Context, userID uint) (*models.AuthorSnapshot, error)
}

// checkCanView wraps a resolver call with the fail-closed contract: a
// resolver error is surfaced as VISIBILITY_UNAVAILABLE, a negative answer as
// NOT_VISIBLE dressed up as a 404.
func checkCanView(ctx context.Context, resolver VisibilityResolver, viewerID uint, post *models.Post) error {
	ok, err := resolver.CanView(ctx, viewerID, post.AuthorID, post.ScopeID, post.Visibility)
	if err != nil {
		return models.NewVisibilityUnavailableError(err)
	}
	if !ok {
		return models.NewNotVisibleError("post", post.ID)
	}
	return nil
}
