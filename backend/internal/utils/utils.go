package utils

import (
	"unicode/utf8"

	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/errors"
)

const maxTextLength = 10_000

// PostValidator checks the fields every thread and reply must carry.
type PostValidator struct{}

func (e *PostValidator) Text(text domain.PostText) error {
	if len(text) == 0 {
		return errors.ErrMissingFields
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return errors.Validation("Text is too long")
	}
	return nil
}

func (e *PostValidator) Password(password domain.DeletePassword) error {
	if len(password) == 0 {
		return errors.ErrMissingFields
	}
	return nil
}
