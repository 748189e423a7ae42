// Package identity reads user display snapshots published to Redis by the
// identity service. The engine never owns user records; a missing snapshot is
// normal and renders as an anonymous author.
package identity

import (
	"context"
	"fmt"

	"pulse/internal/models"

	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "user:profile:%d"

func ProfileKey(userID uint) string {
	return fmt.Sprintf(profileKeyPrefix, userID)
}

// Directory resolves author snapshots from the identity service's Redis
// hashes.
type Directory struct {
	rdb *redis.Client
}

func NewDirectory(rdb *redis.Client) *Directory {
	return &Directory{rdb: rdb}
}

// Lookup returns the snapshot for userID, or (nil, nil) when the identity
// service has published none.
func (d *Directory) Lookup(ctx context.Context, userID uint) (*models.AuthorSnapshot, error) {
	fields, err := d.rdb.HGetAll(ctx, ProfileKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("identity lookup for user %d: %w", userID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &models.AuthorSnapshot{
		UserID:      userID,
		DisplayName: fields["display_name"],
		AvatarURL:   fields["avatar_url"],
	}, nil
}
