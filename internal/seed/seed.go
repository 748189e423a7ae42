// Package seed populates the engine with demo data for development and
// testing. It writes through the repositories so denormalized counters stay
// consistent with the rows they summarize.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"pulse/internal/identity"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/visibility"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Seeder populates the database and, when Redis is available, the identity
// and visibility keys the API reads at request time.
type Seeder struct {
	db  *gorm.DB
	rdb *redis.Client
	r   *rand.Rand

	posts     repository.PostRepository
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
}

// NewSeeder creates a Seeder. rdb may be nil; identity and visibility seeding
// are skipped then and every seeded post is only readable where PUBLIC.
func NewSeeder(db *gorm.DB, rdb *redis.Client) *Seeder {
	//nolint:gosec // weak randomness is fine for seed data
	return &Seeder{
		db:        db,
		rdb:       rdb,
		r:         rand.New(rand.NewSource(time.Now().UnixNano())),
		posts:     repository.NewPostRepository(db),
		comments:  repository.NewCommentRepository(db),
		reactions: repository.NewReactionRepository(db),
	}
}

// ClearAll removes every seeded row. Portable across postgres and sqlite.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{&models.Reaction{}, &models.Comment{}, &models.Post{}} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}
	return nil
}

// Run seeds the full dataset described by the profile.
func (s *Seeder) Run(ctx context.Context, profile Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	factory := NewFactory(profile)

	userIDs := make([]uint, profile.Users)
	for i := range userIDs {
		userIDs[i] = uint(i + 1)
	}

	if s.rdb != nil {
		if err := s.seedIdentities(ctx, factory, userIDs); err != nil {
			return err
		}
		if err := s.seedSocialGraph(ctx, userIDs); err != nil {
			return err
		}
		if err := s.seedScopes(ctx, profile, userIDs); err != nil {
			return err
		}
	} else {
		log.Println("No Redis configured; skipping identity and visibility seeding")
	}

	posts, err := s.seedPosts(ctx, factory, profile, userIDs)
	if err != nil {
		return err
	}
	log.Printf("Created %d posts", len(posts))

	if err := s.seedEngagement(ctx, factory, profile, posts, userIDs); err != nil {
		return err
	}

	log.Println("Seeding complete")
	return nil
}

func (s *Seeder) seedIdentities(ctx context.Context, factory *Factory, userIDs []uint) error {
	for _, userID := range userIDs {
		err := s.rdb.HSet(ctx, identity.ProfileKey(userID),
			"display_name", factory.DisplayName(),
			"avatar_url", factory.AvatarURL(userID),
		).Err()
		if err != nil {
			return fmt.Errorf("seed identity for user %d: %w", userID, err)
		}
	}
	log.Printf("Published %d identity snapshots", len(userIDs))
	return nil
}

// seedSocialGraph gives every user a handful of friends (symmetric) and
// followers (one-way).
func (s *Seeder) seedSocialGraph(ctx context.Context, userIDs []uint) error {
	for _, userID := range userIDs {
		for i := 0; i < 5 && len(userIDs) > 1; i++ {
			other := userIDs[s.r.Intn(len(userIDs))]
			if other == userID {
				continue
			}
			if err := s.rdb.SAdd(ctx, visibility.FriendsKey(userID), other).Err(); err != nil {
				return fmt.Errorf("seed friends: %w", err)
			}
			if err := s.rdb.SAdd(ctx, visibility.FriendsKey(other), userID).Err(); err != nil {
				return fmt.Errorf("seed friends: %w", err)
			}
		}
		for i := 0; i < 8 && len(userIDs) > 1; i++ {
			follower := userIDs[s.r.Intn(len(userIDs))]
			if follower == userID {
				continue
			}
			if err := s.rdb.SAdd(ctx, visibility.FollowersKey(userID), follower).Err(); err != nil {
				return fmt.Errorf("seed followers: %w", err)
			}
		}
	}
	return nil
}

// seedScopes enrolls roughly half the users in each scope and promotes the
// first member to moderator.
func (s *Seeder) seedScopes(ctx context.Context, profile Profile, userIDs []uint) error {
	for scopeID := uint(1); scopeID <= uint(profile.Scopes); scopeID++ {
		moderatorSet := false
		for _, userID := range userIDs {
			if s.r.Float64() > 0.5 {
				continue
			}
			if err := s.rdb.SAdd(ctx, visibility.MembersKey(scopeID), userID).Err(); err != nil {
				return fmt.Errorf("seed scope members: %w", err)
			}
			if !moderatorSet {
				if err := s.rdb.SAdd(ctx, visibility.ModeratorsKey(scopeID), userID).Err(); err != nil {
					return fmt.Errorf("seed scope moderators: %w", err)
				}
				moderatorSet = true
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, factory *Factory, profile Profile, userIDs []uint) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, profile.Posts)
	pinnedLeft := make(map[uint]int, profile.Scopes)
	for scopeID := uint(1); scopeID <= uint(profile.Scopes); scopeID++ {
		pinnedLeft[scopeID] = profile.PinnedPerScope
	}

	for i := 0; i < profile.Posts; i++ {
		authorID := userIDs[s.r.Intn(len(userIDs))]

		var scopeID *uint
		if profile.Scopes > 0 && s.r.Float64() < 0.25 {
			id := uint(s.r.Intn(profile.Scopes) + 1)
			scopeID = &id
		}

		post := factory.BuildPost(authorID, scopeID)
		if err := s.posts.Create(ctx, post); err != nil {
			return nil, fmt.Errorf("seed post: %w", err)
		}
		if scopeID != nil && pinnedLeft[*scopeID] > 0 {
			if err := s.posts.SetPinned(ctx, post.ID, true); err != nil {
				return nil, fmt.Errorf("pin seed post: %w", err)
			}
			pinnedLeft[*scopeID]--
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// seedEngagement attaches comments and reactions to the seeded posts through
// the repositories, so every counter reflects its rows.
func (s *Seeder) seedEngagement(ctx context.Context, factory *Factory, profile Profile, posts []*models.Post, userIDs []uint) error {
	var commentCount, reactionCount int

	for _, post := range posts {
		var topLevel []uint
		n := 0
		if profile.MaxCommentsPerPost > 0 {
			n = s.r.Intn(profile.MaxCommentsPerPost + 1)
		}
		for i := 0; i < n; i++ {
			authorID := userIDs[s.r.Intn(len(userIDs))]

			var parentID *uint
			if len(topLevel) > 0 && s.r.Float64() < profile.ReplyRate {
				parentID = &topLevel[s.r.Intn(len(topLevel))]
			}

			comment := factory.BuildComment(post.ID, authorID, parentID)
			if err := s.comments.Create(ctx, comment); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
			if parentID == nil {
				topLevel = append(topLevel, comment.ID)
			}
			commentCount++
		}

		for _, userID := range userIDs {
			if s.r.Float64() > profile.ReactionRate {
				continue
			}
			kind, symbol := factory.PickReaction()
			if _, _, err := s.reactions.Set(ctx, models.SubjectPost, post.ID, userID, kind, symbol); err != nil {
				return fmt.Errorf("seed reaction: %w", err)
			}
			reactionCount++
		}
	}

	log.Printf("Created %d comments and %d reactions", commentCount, reactionCount)
	return nil
}
