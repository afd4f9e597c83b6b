// Package prompt asks the operator for input on the terminal.
package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

var (
	// ErrAborted is returned when the operator presses Ctrl+C.
	ErrAborted = errors.New("aborted")

	// ErrPasswordMismatch is returned when the confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// IsAborted reports whether err means the operator gave up.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrap(err error) error {
	if err != nil && IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input asks for a line of text.
func Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{Label: label, Default: defaultValue}
	s, err := p.Run()
	return s, wrap(err)
}

// Password asks for a masked secret.
func Password(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*'}
	s, err := p.Run()
	return s, wrap(err)
}

// NewPassword asks twice for a password of at least minLength characters.
func NewPassword(minLength int) (string, error) {
	p := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}
			return nil
		},
	}
	pw, err := p.Run()
	if err != nil {
		return "", wrap(err)
	}
	confirm, err := Password("Confirm password")
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", ErrPasswordMismatch
	}
	return pw, nil
}

// Confirm asks a yes/no question. force skips the question.
func Confirm(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	}
	return false, err
}
