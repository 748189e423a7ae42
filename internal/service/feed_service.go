package service

import (
	"context"
	"errors"

	"pulse/internal/cache"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/repository"
)

const (
	// feedChunkSize is how many candidate rows one repository scan pulls
	// before the visibility filter runs. Big enough that a typical page
	// resolves in one chunk even with a strict filter.
	feedChunkSize = 200

	defaultFeedPageLimit = 20
	maxFeedPageLimit     = 100
)

var errUnknownAuthor = errors.New("identity directory has no snapshot for user")

type FeedService struct {
	postRepo     repository.PostRepository
	reactionRepo repository.ReactionRepository
	resolver     VisibilityResolver
	directory    IdentityDirectory
}

type FeedInput struct {
	ViewerID uint
	ScopeID  *uint
	Limit    int
	Offset   int
}

// FeedPage is one offset-paginated slice of the feed. HasMore is exact over
// the visible subset at scan time; concurrent inserts may shift later pages.
type FeedPage struct {
	Posts   []*models.Post `json:"posts"`
	HasMore bool           `json:"has_more"`
}

func NewFeedService(
	postRepo repository.PostRepository,
	reactionRepo repository.ReactionRepository,
	resolver VisibilityResolver,
	directory IdentityDirectory,
) *FeedService {
	return &FeedService{
		postRepo:     postRepo,
		reactionRepo: reactionRepo,
		resolver:     resolver,
		directory:    directory,
	}
}

func normalizePage(limit, offset int) (int, int, error) {
	if offset < 0 {
		return 0, 0, models.NewValidationError("Offset must not be negative")
	}
	if limit <= 0 {
		limit = defaultFeedPageLimit
	}
	if limit > maxFeedPageLimit {
		limit = maxFeedPageLimit
	}
	return limit, offset, nil
}

// GetFeed returns the viewer's feed page. The repository supplies candidate
// rows in feed order; the visibility filter runs here, before any pagination
// math, so offsets and has_more always count visible posts only.
func (s *FeedService) GetFeed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	limit, offset, err := normalizePage(in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	fetch := func(chunkLimit, chunkOffset int) ([]*models.Post, error) {
		return s.postRepo.ListOrdered(ctx, in.ScopeID, chunkLimit, chunkOffset)
	}
	page, err := s.paginateVisible(ctx, in.ViewerID, limit, offset, fetch)
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, in.ViewerID, page.Posts)
	return page, nil
}

// GetUserPosts returns one author's posts the viewer may read, newest first.
func (s *FeedService) GetUserPosts(ctx context.Context, viewerID, authorID uint, limit, offset int) (*FeedPage, error) {
	limit, offset, err := normalizePage(limit, offset)
	if err != nil {
		return nil, err
	}
	fetch := func(chunkLimit, chunkOffset int) ([]*models.Post, error) {
		return s.postRepo.ListByAuthor(ctx, authorID, chunkLimit, chunkOffset)
	}
	page, err := s.paginateVisible(ctx, viewerID, limit, offset, fetch)
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, viewerID, page.Posts)
	return page, nil
}

// paginateVisible walks candidate chunks until it has seen offset+limit+1
// visible posts or the store runs dry. The +1 makes has_more exact without
// counting the whole visible set.
func (s *FeedService) paginateVisible(ctx context.Context, viewerID uint, limit, offset int, fetch func(limit, offset int) ([]*models.Post, error)) (*FeedPage, error) {
	need := offset + limit + 1
	visible := make([]*models.Post, 0, need)
	chunks := 0

	for chunkOffset := 0; len(visible) < need; chunkOffset += feedChunkSize {
		chunk, err := fetch(feedChunkSize, chunkOffset)
		if err != nil {
			return nil, err
		}
		chunks++
		for _, post := range chunk {
			ok, err := s.resolver.CanView(ctx, viewerID, post.AuthorID, post.ScopeID, post.Visibility)
			if err != nil {
				return nil, models.NewVisibilityUnavailableError(err)
			}
			if ok {
				visible = append(visible, post)
				if len(visible) == need {
					break
				}
			}
		}
		if len(chunk) < feedChunkSize {
			break
		}
	}
	middleware.FeedChunksScanned.Observe(float64(chunks))

	if offset >= len(visible) {
		return &FeedPage{Posts: []*models.Post{}}, nil
	}
	end := offset + limit
	if end > len(visible) {
		end = len(visible)
	}
	return &FeedPage{
		Posts:   visible[offset:end],
		HasMore: len(visible) > end,
	}, nil
}

// decorate attaches author snapshots and the viewer's reactions to a page.
// Enrichment is best-effort; a failed lookup leaves the field empty.
func (s *FeedService) decorate(ctx context.Context, viewerID uint, posts []*models.Post) {
	if len(posts) == 0 {
		return
	}
	for _, post := range posts {
		post.Author = lookupAuthor(ctx, s.directory, post.AuthorID)
	}

	if viewerID == 0 || s.reactionRepo == nil {
		return
	}
	ids := make([]uint, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	reactions, err := s.reactionRepo.ListForViewer(ctx, models.SubjectPost, ids, viewerID)
	if err != nil {
		return
	}
	for _, post := range posts {
		post.ViewerReaction = reactions[post.ID]
	}
}

// lookupAuthor resolves a display snapshot through the Redis cache. Misses
// and directory failures yield nil rather than an error; display data is
// never worth failing a read for.
func lookupAuthor(ctx context.Context, directory IdentityDirectory, userID uint) *models.AuthorSnapshot {
	if directory == nil {
		return nil
	}
	var snapshot models.AuthorSnapshot
	err := cache.Aside(ctx, cache.AuthorKey(userID), &snapshot, cache.AuthorTTL, func() error {
		got, err := directory.Lookup(ctx, userID)
		if err != nil {
			return err
		}
		if got == nil {
			return errUnknownAuthor
		}
		snapshot = *got
		return nil
	})
	if err != nil {
		return nil
	}
	return &snapshot
}
