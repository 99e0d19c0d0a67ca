package errors

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unavailable", errors.Wrap(mailerrors.ErrTransportUnavailable, "dial tcp"), http.StatusServiceUnavailable, CodeUnavailable},
		{"timeout", errors.Wrap(mailerrors.ErrTimeout, "i/o timeout"), http.StatusGatewayTimeout, CodeTimeout},
		{"auth", errors.Wrap(mailerrors.ErrAuth, "535"), http.StatusUnauthorized, CodeAuth},
		{"missing auth", mailerrors.ErrMissingAuth, http.StatusUnauthorized, CodeAuth},
		{"not found", errors.Wrapf(mailerrors.ErrNotFound, "uid %d", 4), http.StatusNotFound, CodeNotFound},
		{"no content", mailerrors.ErrNoContent, http.StatusNotFound, CodeNotFound},
		{"invalid index", mailerrors.ErrInvalidIndex, http.StatusBadRequest, CodeBadRequest},
		{"invalid folder", mailerrors.ErrInvalidFolder, http.StatusBadRequest, CodeBadRequest},
		{"invalid request", mailerrors.ErrInvalidRequest, http.StatusBadRequest, CodeBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
		{"canceled", context.Canceled, http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := HTTPStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestHTTPStatus_MultiErrors(t *testing.T) {
	errs := NewMultiErrors()
	errs.Add("to", "invalid address", nil)

	status, code := HTTPStatus(errs)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeBadRequest, code)
	assert.Equal(t, "to: invalid address", errs.Error())
}

func TestMultiErrors(t *testing.T) {
	errs := NewMultiErrors()
	assert.False(t, errs.HasErrors())

	errs.Add("cc", "invalid address", nil)
	errs.Add("cc", "duplicate", nil)
	assert.True(t, errs.HasErrors())
	assert.Len(t, errs.Errors["cc"], 2)
}
