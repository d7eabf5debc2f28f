// Package errs is the project's error surface over cockroachdb/errors.
// Callers use these helpers instead of importing the library directly so
// the stack-capture and marking behavior stays in one place.
package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

// Mark ties a sentinel to err so errors.Is matches either one, from the
// standard library as well as from this package. The cause keeps its stack
// and stays first in the chain. A nil err degenerates to the sentinel.
//
// cr.Mark records the sentinel out of band where only cr.Is sees it; the
// handlers match with stdlib errors.Is, so the sentinel must also sit in
// the unwrap chain.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(cr.Join(err, markErr), markErr)
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}

func As(err error, target any) bool {
	return cr.As(err, target)
}

// ExtractStackLines renders the verbose form of err and returns at most
// maxLines of it, for structured log fields.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
