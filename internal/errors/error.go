package errors

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"
)

var (
	// transport errors
	ErrTransportUnavailable = errors.New("mail server unavailable")
	ErrTimeout              = errors.New("mail server timeout")
	ErrAuth                 = errors.New("authentication failed")

	// lookup errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidIndex = errors.New("invalid attachment index")
	ErrNoContent    = errors.New("attachment content not available")

	// decoding errors, never surfaced for a single listing entry
	ErrDecodeFailure = errors.New("message could not be decoded")

	// validation errors
	ErrInvalidFolder  = errors.New("invalid folder")
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingAuth    = errors.New("email and password are required")
)

// Classify maps a raw network or protocol error onto the transport taxonomy.
// Errors already carrying a taxonomy sentinel are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTaxonomy(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(ErrTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(ErrTimeout, err.Error())
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Wrap(ErrTransportUnavailable, err.Error())
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return errors.Wrap(ErrTimeout, err.Error())
	case strings.Contains(msg, "authenticationfailed"),
		strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "login failed"):
		return errors.Wrap(ErrAuth, err.Error())
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "connection closed"),
		strings.Contains(msg, "use of closed network connection"),
		msg == "eof":
		return errors.Wrap(ErrTransportUnavailable, err.Error())
	case strings.Contains(msg, "nonexistent"),
		strings.Contains(msg, "doesn't exist"),
		strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "no such mailbox"):
		return errors.Wrap(ErrNotFound, err.Error())
	}
	return err
}

func IsTaxonomy(err error) bool {
	for _, sentinel := range []error{
		ErrTransportUnavailable, ErrTimeout, ErrAuth,
		ErrNotFound, ErrInvalidIndex, ErrNoContent,
		ErrDecodeFailure, ErrInvalidFolder, ErrInvalidRequest, ErrMissingAuth,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidFolder) || errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrMissingAuth)
}
