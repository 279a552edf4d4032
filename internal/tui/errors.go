package tui

import (
	"context"
	"errors"
	"fmt"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// isCanceled reports whether err comes from a fetch superseded by a newer one.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
