package errors

import (
	"context"
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "read tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"net timeout", timeoutErr{}, ErrTimeout},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, ErrTransportUnavailable},
		{"imap auth", errors.New("[AUTHENTICATIONFAILED] Invalid credentials (Failure)"), ErrAuth},
		{"missing mailbox", errors.New("Mailbox doesn't exist: INBOX.Foo"), ErrNotFound},
		{"already classified", errors.Wrap(ErrInvalidIndex, "index 4"), ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}
}

func TestClassify_UnknownPassesThrough(t *testing.T) {
	err := errors.New("something else")
	assert.Equal(t, err, Classify(err))
	assert.Nil(t, Classify(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(errors.Wrap(ErrInvalidFolder, "FOO")))
	assert.False(t, IsValidation(ErrNotFound))
}
