package repository

import (
	"context"
	"testing"
	"time"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestPostRepository_ListOrdered_Global(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := seedPost(t, db, 1, withCreatedAt(base))
	mid := seedPost(t, db, 2, withCreatedAt(base.Add(time.Hour)))
	newest := seedPost(t, db, 3, withCreatedAt(base.Add(2*time.Hour)))

	// Pinning is a scope-feed concept; the global feed ignores it.
	require.NoError(t, repo.SetPinned(ctx, old.ID, true))

	posts, err := repo.ListOrdered(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{newest.ID, mid.ID, old.ID}, postIDs(posts))
}

func TestPostRepository_ListOrdered_TieBreakByID(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedPost(t, db, 1, withCreatedAt(at))
	second := seedPost(t, db, 2, withCreatedAt(at))

	posts, err := repo.ListOrdered(context.Background(), nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, postIDs(posts))
}

func TestPostRepository_ListOrdered_ScopePinnedFirst(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scope := uint(5)
	oldPinned := seedPost(t, db, 1, withScope(scope), withCreatedAt(base))
	newer := seedPost(t, db, 2, withScope(scope), withCreatedAt(base.Add(time.Hour)))
	newest := seedPost(t, db, 3, withScope(scope), withCreatedAt(base.Add(2*time.Hour)))
	// A post in another scope must never bleed in.
	seedPost(t, db, 4, withScope(99), withCreatedAt(base.Add(3*time.Hour)))

	require.NoError(t, repo.SetPinned(ctx, oldPinned.ID, true))

	posts, err := repo.ListOrdered(ctx, &scope, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{oldPinned.ID, newest.ID, newer.ID}, postIDs(posts))
}

func TestPostRepository_ListOrdered_Pagination(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var all []uint
	for i := 0; i < 7; i++ {
		p := seedPost(t, db, 1, withCreatedAt(base.Add(time.Duration(i)*time.Minute)))
		all = append(all, p.ID)
	}

	// Walk the feed in pages of 3; together the pages cover every post once,
	// newest first.
	var walked []uint
	for offset := 0; ; offset += 3 {
		page, err := repo.ListOrdered(ctx, nil, 3, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		walked = append(walked, postIDs(page)...)
	}
	require.Len(t, walked, len(all))
	for i, id := range walked {
		assert.Equal(t, all[len(all)-1-i], id)
	}
}

func TestPostRepository_ListByAuthor(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mine1 := seedPost(t, db, 7, withCreatedAt(base))
	seedPost(t, db, 8, withCreatedAt(base.Add(time.Minute)))
	mine2 := seedPost(t, db, 7, withCreatedAt(base.Add(2*time.Minute)))

	posts, err := repo.ListByAuthor(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{mine2.ID, mine1.ID}, postIDs(posts))
}

func TestPostRepository_ListOrdered_Empty(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewPostRepository(db)

	posts, err := repo.ListOrdered(context.Background(), nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
