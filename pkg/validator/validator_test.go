package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirk1998/notes-vault/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	v := New()
	assert.Equal(t, "Groceries", v.SanitizeString("  Gro\x00ceries \n"))
}

func TestValidateNoteFields(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateNoteTitle(""))
	assert.NoError(t, v.ValidateNoteTitle(strings.Repeat("é", 255)))
	assert.ErrorIs(t, v.ValidateNoteTitle(strings.Repeat("a", 256)), errors.ErrInvalidInput)

	assert.NoError(t, v.ValidateNoteContent("body"))
	assert.ErrorIs(t, v.ValidateNoteContent(strings.Repeat("a", 1048577)), errors.ErrInvalidInput)

	assert.NoError(t, v.ValidateSearchQuery("milk"))
	assert.ErrorIs(t, v.ValidateSearchQuery(strings.Repeat("q", 256)), errors.ErrInvalidInput)
}

func TestValidateFolderName(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "Work", true},
		{"spaces inside", "Side projects", true},
		{"blank", "   ", false},
		{"control char", "Wo\trk", false},
		{"too long", strings.Repeat("f", 101), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFolderName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrInvalidFolderName)
			}
		})
	}
}

func TestValidateTag(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateTag("shopping"))
	assert.NoError(t, v.ValidateTag(" work "))
	assert.ErrorIs(t, v.ValidateTag(""), errors.ErrInvalidTag)
	assert.ErrorIs(t, v.ValidateTag("two words"), errors.ErrInvalidTag)
	assert.ErrorIs(t, v.ValidateTag("a,b"), errors.ErrInvalidTag)
	assert.ErrorIs(t, v.ValidateTag(strings.Repeat("t", 51)), errors.ErrInvalidTag)
}

func TestValidatePassphrase(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidatePassphrase("correct horse battery"))
	assert.ErrorIs(t, v.ValidatePassphrase("short"), errors.ErrInvalidKey)
	assert.ErrorIs(t, v.ValidatePassphrase(strings.Repeat("p", 129)), errors.ErrInvalidKey)
}
