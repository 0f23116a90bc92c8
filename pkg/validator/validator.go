package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/amirk1998/notes-vault/pkg/errors"
)

const (
	maxTitleLength      = 255
	maxContentLength    = 1048576 // 1MB
	maxFolderNameLength = 100
	maxTagLength        = 50
	maxQueryLength      = 255
	minPassphrase       = 12
	maxPassphrase       = 128
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// SanitizeString removes null bytes and surrounding whitespace
func (v *Validator) SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	return input
}

// ValidateNoteTitle validates note title. Untitled notes are allowed.
func (v *Validator) ValidateNoteTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return errors.NewAppError(errors.ErrInvalidInput, "title too long (max 255 characters)", 400)
	}

	return nil
}

// ValidateNoteContent validates note content
func (v *Validator) ValidateNoteContent(content string) error {
	if len(content) > maxContentLength {
		return errors.NewAppError(errors.ErrInvalidInput, "content too long (max 1MB)", 400)
	}

	return nil
}

// ValidateFolderName checks a folder name is non-blank and printable
func (v *Validator) ValidateFolderName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" || utf8.RuneCountInString(name) > maxFolderNameLength {
		return errors.ErrInvalidFolderName
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.ErrInvalidFolderName
		}
	}

	return nil
}

// ValidateTag checks a tag is a single non-blank word
func (v *Validator) ValidateTag(tag string) error {
	tag = strings.TrimSpace(tag)

	if tag == "" || utf8.RuneCountInString(tag) > maxTagLength {
		return errors.ErrInvalidTag
	}

	for _, r := range tag {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == ',' {
			return errors.ErrInvalidTag
		}
	}

	return nil
}

// ValidateSearchQuery bounds the search text length
func (v *Validator) ValidateSearchQuery(query string) error {
	if utf8.RuneCountInString(query) > maxQueryLength {
		return errors.NewAppError(errors.ErrInvalidInput, "search query too long (max 255 characters)", 400)
	}

	return nil
}

// ValidatePassphrase checks backup passphrase length
func (v *Validator) ValidatePassphrase(passphrase string) error {
	if len(passphrase) < minPassphrase || len(passphrase) > maxPassphrase {
		return errors.NewAppError(errors.ErrInvalidKey, "passphrase must be 12 to 128 characters", 400)
	}

	return nil
}
