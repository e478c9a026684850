package exactsrc

import (
	"errors"
	"fmt"
)

var (
	// ErrVerification matches every ExtractionVerificationError.
	ErrVerification = errors.New("exact source verification failed")

	// ErrSyntax is returned by a Parser when a fragment does not parse.
	ErrSyntax = errors.New("syntax error")

	// ErrMismatch means the candidate parsed but its canonical form differs
	// from the original node's.
	ErrMismatch = errors.New("canonical form mismatch")
)

// ExtractionVerificationError reports that extracted text could not be
// verified. Text is the best-effort, unverified extraction.
type ExtractionVerificationError struct {
	Text string

	// Want and Got are the trimmed canonical forms of the original nodes and of
	// the re-parsed candidate. Both are empty when the candidate did not parse.
	Want string
	Got  string

	Cause error
}

func (e *ExtractionVerificationError) Error() string {
	return fmt.Sprintf("%v: %v: %q", ErrVerification, e.Cause, e.Text)
}

func (e *ExtractionVerificationError) Unwrap() error { return e.Cause }

func (e *ExtractionVerificationError) Is(target error) bool {
	return target == ErrVerification
}

// PayloadOf returns the unverified text carried by err, if err is (or wraps)
// an ExtractionVerificationError.
func PayloadOf(err error) (string, bool) {
	var verr *ExtractionVerificationError
	if errors.As(err, &verr) {
		return verr.Text, true
	}
	return "", false
}
