// Package apperr holds the error kinds shared by the quiz components.
package apperr

import "errors"

var (
	// ErrRetrieval means the store could not be reached or returned an error
	ErrRetrieval = errors.New("content store unavailable")
	// ErrGeneration means the generator could not be reached
	ErrGeneration = errors.New("content generator unavailable")
	// ErrParse means the generator answered with output that could not be parsed
	ErrParse = errors.New("malformed generator output")
	// ErrAuthRequired means the operation needs a signed-in user
	ErrAuthRequired = errors.New("authentication required")
	// ErrInvalidInput covers bad dates, unknown content types and empty guesses
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotToday is returned when guessing content of a day other than today
	ErrNotToday = errors.New("guesses are only accepted for today")
	// ErrNotFound means no content exists for the requested date
	ErrNotFound = errors.New("no content available for this date")
)

// Message converts an error into the text shown to a user
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "No content is available for this date."
	case errors.Is(err, ErrNotToday):
		return "You can only guess today's puzzle."
	case errors.Is(err, ErrInvalidInput):
		return "That request doesn't look right."
	case errors.Is(err, ErrAuthRequired):
		return "Please sign in first."
	case errors.Is(err, ErrGeneration), errors.Is(err, ErrParse):
		return "Couldn't generate today's puzzle. Please try again later."
	case errors.Is(err, ErrRetrieval):
		return "Couldn't reach the server. Please try again later."
	default:
		return "Something went wrong. Please try again later."
	}
}
