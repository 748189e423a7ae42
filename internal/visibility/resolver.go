// Package visibility answers read and moderation predicates against the
// social graph and scope membership sets maintained in Redis by the external
// graph and scope services. This process only ever reads them.
package visibility

import (
	"context"
	"fmt"
	"strconv"

	"pulse/internal/models"

	"github.com/redis/go-redis/v9"
)

// Key layout owned by the graph and scope services.
const (
	friendsKeyPrefix    = "friends:%d"
	followersKeyPrefix  = "followers:%d"
	membersKeyPrefix    = "scope:members:%d"
	moderatorsKeyPrefix = "scope:moderators:%d"
)

func FriendsKey(userID uint) string { return fmt.Sprintf(friendsKeyPrefix, userID) }
func FollowersKey(userID uint) string { return fmt.Sprintf(followersKeyPrefix, userID) }
func MembersKey(scopeID uint) string { return fmt.Sprintf(membersKeyPrefix, scopeID) }
func ModeratorsKey(scopeID uint) string { return fmt.Sprintf(moderatorsKeyPrefix, scopeID) }

// Resolver is the Redis-backed visibility resolver. Any Redis failure
// propagates to the caller, which fails closed; there is no permissive
// fallback here.
type Resolver struct {
	rdb *redis.Client
}

func NewResolver(rdb *redis.Client) *Resolver {
	return &Resolver{rdb: rdb}
}

func (r *Resolver) isMember(ctx context.Context, key string, userID uint) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, key, strconv.FormatUint(uint64(userID), 10)).Result()
	if err != nil {
		return false, fmt.Errorf("visibility lookup on %s: %w", key, err)
	}
	return ok, nil
}

// CanView implements the read predicate. Authors always see their own posts;
// anonymous viewers only see PUBLIC ones.
func (r *Resolver) CanView(ctx context.Context, viewerID, authorID uint, scopeID *uint, visibility models.Visibility) (bool, error) {
	if visibility == models.VisibilityPublic {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	if viewerID == authorID {
		return true, nil
	}

	switch visibility {
	case models.VisibilityFriendsOnly:
		return r.isMember(ctx, FriendsKey(authorID), viewerID)
	case models.VisibilityFriendsAndFollowers:
		friend, err := r.isMember(ctx, FriendsKey(authorID), viewerID)
		if err != nil || friend {
			return friend, err
		}
		return r.isMember(ctx, FollowersKey(authorID), viewerID)
	case models.VisibilityScope:
		if scopeID == nil {
			return false, fmt.Errorf("SCOPE visibility without a scope id")
		}
		return r.isMember(ctx, MembersKey(*scopeID), viewerID)
	default:
		return false, fmt.Errorf("unknown visibility %q", visibility)
	}
}

// CanModerate reports whether userID moderates the scope.
func (r *Resolver) CanModerate(ctx context.Context, userID, scopeID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return r.isMember(ctx, ModeratorsKey(scopeID), userID)
}
