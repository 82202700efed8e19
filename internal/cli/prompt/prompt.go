// Package prompt wraps promptui for the interactive parts of the nsmd CLI.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err came from an interrupted prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort)
}

func wrap(err error) error {
	if err != nil && IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Input asks for free text, pre-filled with def.
func Input(label, def string) (string, error) {
	p := promptui.Prompt{Label: label, Default: def}
	s, err := p.Run()
	return strings.TrimSpace(s), wrap(err)
}

// Required asks for non-empty text.
func Required(label string) (string, error) {
	p := promptui.Prompt{Label: label, Validate: required}
	s, err := p.Run()
	return strings.TrimSpace(s), wrap(err)
}

// Port asks for a TCP port, pre-filled with def.
func Port(label string, def int) (int, error) {
	p := promptui.Prompt{Label: label, Default: strconv.Itoa(def), Validate: validatePort}
	s, err := p.Run()
	if err != nil {
		return 0, wrap(err)
	}
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n, nil
}

// Password asks for a masked secret. Empty input is allowed.
func Password(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*'}
	s, err := p.Run()
	return s, wrap(err)
}

// Confirm asks a yes/no question. A declined prompt returns false, nil.
func Confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, wrap(err)
	}
}

// Choose asks the user to pick one of items and returns it.
func Choose(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "* {{ . | green }}",
		},
	}
	_, s, err := p.Run()
	return s, wrap(err)
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", n)
	}
	return nil
}
