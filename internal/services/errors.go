package services

import (
	"errors"

	"startup-os-backend/internal/supabase"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("project not found")
	ErrPersistence     = errors.New("failed to save changes, please try again")
	ErrPremiumRequired = errors.New("premium subscription required")
	ErrUnknownKind     = errors.New("unknown artifact kind")

	// ErrGenerationFailed wraps completion and schema failures. Callers may
	// show its text to the user.
	ErrGenerationFailed = errors.New("generation failed")

	ErrUnexpected = errors.New("something went wrong, please try again")
)

// notFound maps the store's not-found error to ErrNotFound and leaves other
// errors untouched.
func notFound(err error) error {
	if errors.Is(err, supabase.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// publicMessage is the text of err that may be shown in an ActionResult.
// Anything other than a generation or save failure is replaced.
func publicMessage(err error) string {
	if errors.Is(err, ErrGenerationFailed) || errors.Is(err, ErrPersistence) {
		return err.Error()
	}
	return ErrUnexpected.Error()
}
