package exchange

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTexts = Texts{Fallback: "fallback", EmptyReply: "placeholder"}

func TestResolve_Success(t *testing.T) {
	content, err := testTexts.Resolve(Outcome{Status: http.StatusOK, Body: []byte(`{"reply":"X"}`)})
	require.NoError(t, err)
	assert.Equal(t, "X", content)
}

func TestResolve_EveryFailureYieldsFallback(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		wantErr error
	}{
		{"transport", Outcome{Err: errors.New("connection refused")}, nil},
		{"not json", Outcome{Status: http.StatusOK, Body: []byte("not json")}, ErrMalformedBody},
		{"empty body", Outcome{Status: http.StatusOK}, ErrEmptyBody},
		{"whitespace body", Outcome{Status: http.StatusOK, Body: []byte(" \n")}, ErrEmptyBody},
		{"reply not a string", Outcome{Status: http.StatusOK, Body: []byte(`{"reply":42}`)}, ErrMalformedBody},
		{"json array", Outcome{Status: http.StatusOK, Body: []byte(`["a"]`)}, ErrMalformedBody},
		{"server error", Outcome{Status: http.StatusInternalServerError, Body: []byte(`{"error":"boom"}`)}, nil},
		{"server error html", Outcome{Status: http.StatusBadGateway, Body: []byte("<html>bad gateway</html>")}, nil},
		{"redirect", Outcome{Status: http.StatusFound}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := testTexts.Resolve(tt.outcome)
			assert.Equal(t, "fallback", content)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestResolve_StatusErrorPrefersPayloadMessage(t *testing.T) {
	_, err := testTexts.Resolve(Outcome{
		Status: http.StatusInternalServerError,
		Body:   []byte(`{"error":"boom","details":"db down"}`),
	})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "boom", statusErr.Message)
	assert.Equal(t, "db down", statusErr.Details)
}

func TestResolve_StatusErrorSynthesizesMessage(t *testing.T) {
	_, err := testTexts.Resolve(Outcome{Status: http.StatusServiceUnavailable, Body: []byte("oops")})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "unexpected status 503", statusErr.Message)
	assert.Contains(t, err.Error(), "503")
}

func TestResolve_EmptyReplyYieldsPlaceholder(t *testing.T) {
	for _, body := range []string{`{"reply":""}`, `{"reply":"  "}`, `{}`, `null`} {
		content, err := testTexts.Resolve(Outcome{Status: http.StatusOK, Body: []byte(body)})
		assert.Equal(t, "placeholder", content, body)
		assert.ErrorIs(t, err, ErrEmptyReply, body)
	}
}
