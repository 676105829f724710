package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	err := NewFetchError("https://x.test/a.pdf", 404, errors.New("not found"))
	assert.Equal(t, "fetch https://x.test/a.pdf: status 404: not found", err.Error())
	assert.True(t, IsFetch(err))

	noStatus := NewFetchError("https://x.test", 0, errors.New("dial tcp: refused"))
	assert.Equal(t, "fetch https://x.test: dial tcp: refused", noStatus.Error())
}

func TestWrappedKindsSurviveEris(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"fetch", NewFetchError("u", 500, errors.New("boom")), IsFetch},
		{"extraction", NewExtractionError("industry", errors.New("bad json")), IsExtraction},
		{"not found", NewNotFound("company", 9), IsNotFound},
		{"validation", Required("company_id"), IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := eris.Wrap(tt.err, "pipeline: step")
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NewNotFound("profile", 3)
	assert.False(t, IsValidation(err))
	assert.False(t, IsFetch(err))
	assert.False(t, IsExtraction(err))
	assert.False(t, IsNotFound(nil))
}

func TestExtractionErrorUnwrap(t *testing.T) {
	inner := errors.New("missing key")
	err := NewExtractionError("", inner)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "extract: missing key", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Required("profile_id")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(eris.Wrap(NewNotFound("profile", 1), "load")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("db down")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "company_id is required", Message(Required("company_id")))
	assert.Equal(t, "profile 4 not found", Message(NewNotFound("profile", 4)))
	assert.Equal(t, "internal server error", Message(errors.New("secret dsn leaked")))
}
