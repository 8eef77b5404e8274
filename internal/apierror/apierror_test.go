package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusBadRequest,
		KindConflict:       http.StatusBadRequest,
		KindUnauthorized:   http.StatusUnauthorized,
		KindForbidden:      http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindUpstream:       http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", Forbidden("no"))
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.True(t, Is(err, KindForbidden))
	assert.False(t, Is(err, KindNotFound))
}

func TestKindOf_ForeignErrorIsUpstream(t *testing.T) {
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
	assert.False(t, Is(errors.New("boom"), KindUpstream))
}

func TestUpstream_Unwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("error al leer", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUpstream, err.Kind)
}
