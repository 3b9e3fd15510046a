package reply

import "github.com/cockroachdb/errors"

// Failure classes surfaced by Reply. Returned errors are marked with one of
// these; match them with errors.Is from github.com/cockroachdb/errors.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrEncodingFailure     = errors.New("encoding failure")
	ErrTransmissionFailure = errors.New("transmission failure")
)

func invalidArgument(msg string) error {
	return errors.Mark(errors.New(msg), ErrInvalidArgument)
}
