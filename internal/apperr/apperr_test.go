package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	base := New(NotFoundKind, "collection foo not indexed")
	wrapped := fmt.Errorf("while searching: %w", base)

	assert.Equal(t, NotFoundKind, KindOf(wrapped))
}

func TestKindOfDefaultsToBackendError(t *testing.T) {
	assert.Equal(t, BackendErrorKind, KindOf(errors.New("boom")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{ConfigErrorKind, http.StatusInternalServerError},
		{NotFoundKind, http.StatusNotFound},
		{ConflictKind, http.StatusConflict},
		{ReadErrorKind, http.StatusBadRequest},
		{ShutdownErrorKind, http.StatusServiceUnavailable},
		{BackendErrorKind, http.StatusBadGateway},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToHTTPStatus(New(c.kind, "x")), "kind %s", c.kind)
	}
}

func TestToExitCode(t *testing.T) {
	assert.Equal(t, 0, ToExitCode(nil))
	assert.Equal(t, 1, ToExitCode(New(NotFoundKind, "x")))
	assert.Equal(t, 1, ToExitCode(errors.New("plain")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(BackendErrorKind, "embedding request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, BackendErrorKind, KindOf(err))
}
