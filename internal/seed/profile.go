package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the shape of a seeded dataset. Profiles live in YAML files
// so demo environments can be reproduced without editing code.
type Profile struct {
	Users int `yaml:"users"`
	Posts int `yaml:"posts"`

	// Scopes is the number of scope walls to spread SCOPE posts across. Each
	// scope gets membership and one moderator seeded into Redis.
	Scopes         int `yaml:"scopes"`
	PinnedPerScope int `yaml:"pinned_per_scope"`

	MaxCommentsPerPost int `yaml:"max_comments_per_post"`
	// ReplyRate is the chance (0..1) that a comment lands under an existing
	// top-level comment instead of the post itself.
	ReplyRate float64 `yaml:"reply_rate"`
	// ReactionRate is the chance (0..1) that a given user reacts to a given
	// post.
	ReactionRate float64 `yaml:"reaction_rate"`

	EmojiPalette []string `yaml:"emoji_palette"`
}

// DefaultProfile is a medium dataset good for local development.
func DefaultProfile() Profile {
	return Profile{
		Users:              50,
		Posts:              200,
		Scopes:             3,
		PinnedPerScope:     1,
		MaxCommentsPerPost: 8,
		ReplyRate:          0.3,
		ReactionRate:       0.15,
		EmojiPalette:       []string{"🔥", "🎉", "😂", "😢", "👀", "💯"},
	}
}

// LoadProfile reads a YAML profile from path, filling unset fields from the
// defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read seed profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse seed profile %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return profile, fmt.Errorf("seed profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate rejects profiles the seeder cannot honor.
func (p Profile) Validate() error {
	if p.Users < 1 {
		return fmt.Errorf("users must be at least 1, got %d", p.Users)
	}
	if p.Posts < 0 {
		return fmt.Errorf("posts must not be negative, got %d", p.Posts)
	}
	if p.ReplyRate < 0 || p.ReplyRate > 1 {
		return fmt.Errorf("reply_rate must be in [0,1], got %v", p.ReplyRate)
	}
	if p.ReactionRate < 0 || p.ReactionRate > 1 {
		return fmt.Errorf("reaction_rate must be in [0,1], got %v", p.ReactionRate)
	}
	return nil
}
