package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix   = "post:%d"
	AuthorKeyPrefix = "author:%d"
)

const (
	// PostTTL caches anonymous post reads; every mutation invalidates.
	PostTTL = 5 * time.Minute
	// AuthorTTL caches display snapshots from the identity directory. Stale
	// names/avatars are tolerable; counts never ride this cache.
	AuthorTTL = 10 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func AuthorKey(userID uint) string {
	return fmt.Sprintf(AuthorKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}
