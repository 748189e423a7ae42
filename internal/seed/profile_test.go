package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfile_PartialOverridesKeepDefaults(t *testing.T) {
	path := writeProfile(t, "users: 5\nposts: 12\n")

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, profile.Users)
	assert.Equal(t, 12, profile.Posts)

	defaults := DefaultProfile()
	assert.Equal(t, defaults.ReactionRate, profile.ReactionRate)
	assert.Equal(t, defaults.EmojiPalette, profile.EmojiPalette)
}

func TestLoadProfile_RejectsBadRates(t *testing.T) {
	path := writeProfile(t, "reaction_rate: 1.5\n")
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestProfileValidate(t *testing.T) {
	profile := DefaultProfile()
	require.NoError(t, profile.Validate())

	profile.Users = 0
	assert.Error(t, profile.Validate())
}
