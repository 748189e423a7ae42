package seed

import (
	"fmt"
	"math/rand"
	"time"

	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds realistic domain entities. It only constructs values; the
// Seeder decides how they are persisted.
type Factory struct {
	r       *rand.Rand
	profile Profile
}

// NewFactory creates a Factory for the given profile.
func NewFactory(profile Profile) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seed data
	return &Factory{
		r:       rand.New(rand.NewSource(time.Now().UnixNano())),
		profile: profile,
	}
}

var visibilityMix = []models.Visibility{
	models.VisibilityPublic,
	models.VisibilityPublic,
	models.VisibilityPublic,
	models.VisibilityFriendsOnly,
	models.VisibilityFriendsAndFollowers,
}

// BuildPost constructs an unsaved post for the given author. A non-nil scopeID
// forces SCOPE visibility; otherwise the visibility mix skews public.
func (f *Factory) BuildPost(authorID uint, scopeID *uint, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		AuthorID:   authorID,
		ScopeID:    scopeID,
		Content:    gofakeit.Paragraph(1, f.r.Intn(4)+1, 8, "\n"),
		Visibility: visibilityMix[f.r.Intn(len(visibilityMix))],
	}
	if scopeID != nil {
		post.Visibility = models.VisibilityScope
	}

	// Spread created_at over the last 90 days so pagination walks real pages.
	daysBack := f.r.Intn(90)
	minsBack := f.r.Intn(24 * 60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)

	if f.r.Float64() < 0.3 {
		for i := 0; i < f.r.Intn(3)+1; i++ {
			post.MediaRefs = append(post.MediaRefs, gofakeit.UUID())
		}
	}
	if f.r.Float64() < 0.2 {
		post.LinkPreviews = models.LinkPreviews{{
			URL:   gofakeit.URL(),
			Title: gofakeit.Sentence(5),
			Image: fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		}}
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment constructs an unsaved comment on postID. parentID nil means
// top-level.
func (f *Factory) BuildComment(postID, authorID uint, parentID *uint) *models.Comment {
	return &models.Comment{
		PostID:          postID,
		AuthorID:        authorID,
		ParentCommentID: parentID,
		Content:         gofakeit.Sentence(f.r.Intn(12) + 3),
	}
}

// PickReaction returns a reaction kind and symbol, skewed toward plain likes.
func (f *Factory) PickReaction() (models.ReactionKind, string) {
	if f.r.Float64() < 0.6 || len(f.profile.EmojiPalette) == 0 {
		return models.ReactionLike, ""
	}
	return models.ReactionEmoji, f.profile.EmojiPalette[f.r.Intn(len(f.profile.EmojiPalette))]
}

// DisplayName generates a plausible display name for a seeded user.
func (f *Factory) DisplayName() string {
	return gofakeit.Name()
}

// AvatarURL generates a stable avatar URL for a seeded user.
func (f *Factory) AvatarURL(userID uint) string {
	return fmt.Sprintf("https://i.pravatar.cc/150?u=%d", userID)
}
