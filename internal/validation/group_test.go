package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGroupSlug(t *testing.T) {
	for _, s := range []string{"tech", "lev_tolstoy", "group-1", "a"} {
		assert.NoError(t, ValidateGroupSlug(s), s)
	}
	for _, s := range []string{"", "Tech", "with space", "-lead", "trail-", strings.Repeat("a", 51), "slug/path"} {
		assert.Error(t, ValidateGroupSlug(s), s)
	}
}

func TestValidateGroupTitle(t *testing.T) {
	assert.NoError(t, ValidateGroupTitle("Technology"))
	assert.Error(t, ValidateGroupTitle("   "))
	assert.Error(t, ValidateGroupTitle(strings.Repeat("t", 201)))
	assert.NoError(t, ValidateGroupTitle(strings.Repeat("т", 200)))
}
