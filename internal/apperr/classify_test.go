package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubetext/internal/domain"
)

func TestClassifyReservedPrefixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		message     string
		kind        domain.ErrorKind
		display     string
		offerSignIn bool
	}{
		{"rate limit", "__LIMIT__Free usage limit reached", domain.ErrorKindRateLimit, "Free usage limit reached", true},
		{"auth", "__AUTH__Sign in to continue", domain.ErrorKindAuthRequired, "Sign in to continue", true},
		{"premium", "__PREMIUM__Upgrade required", domain.ErrorKindPremiumRequired, "Upgrade required", false},
		{"generic", "Server error: 500", domain.ErrorKindGeneric, "Server error: 500", false},
		{"prefix not anchored", "oops __LIMIT__ later", domain.ErrorKindGeneric, "oops __LIMIT__ later", false},
		{"prefix only", "__PREMIUM__", domain.ErrorKindPremiumRequired, "", false},
		{"case sensitive", "__limit__nope", domain.ErrorKindGeneric, "__limit__nope", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(errors.New(tc.message))
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.display, got.Message)
			assert.Equal(t, tc.offerSignIn, got.OfferSignIn)
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	t.Parallel()

	got := Classify(errors.New("__LIMIT____AUTH__nested"))
	assert.Equal(t, domain.ErrorKindRateLimit, got.Kind)
	assert.Equal(t, "__AUTH__nested", got.Message, "prefix must be stripped exactly once")
}

func TestClassifyDefaultMessage(t *testing.T) {
	t.Parallel()

	got := Classify(nil)
	assert.Equal(t, domain.ErrorKindGeneric, got.Kind)
	assert.Equal(t, DefaultMessage, got.Message)

	got = Classify(errors.New(""))
	assert.Equal(t, DefaultMessage, got.Message)
}

func TestClassifyIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, message := range []string{
		"__LIMIT__Free usage limit reached",
		"__AUTH__Sign in required",
		"__PREMIUM__Upgrade required",
		"plain failure",
	} {
		first := Classify(errors.New(message))
		second := Classify(first)
		require.Equal(t, first, second, message)

		wrapped := Classify(fmt.Errorf("summary: %w", first))
		require.Equal(t, first, wrapped, message)
	}
}

func TestClassifyTransportErrorKeepsKind(t *testing.T) {
	t.Parallel()

	err := &TransportError{
		Kind:      domain.ErrorKindRateLimit,
		Operation: "transcript",
		Status:    http.StatusTooManyRequests,
		Message:   "Free usage limit reached",
	}
	got := Classify(fmt.Errorf("fetch: %w", err))
	assert.Equal(t, domain.NewFailure(domain.ErrorKindRateLimit, "Free usage limit reached"), got)
}

func TestClassifyValidationAndApplicationErrorsAreGeneric(t *testing.T) {
	t.Parallel()

	got := Classify(&ValidationError{Field: "url", Message: "bad link"})
	assert.Equal(t, domain.ErrorKindGeneric, got.Kind)
	assert.Equal(t, "bad link", got.Message)

	got = Classify(&ApplicationError{Operation: "transcript", Message: "No captions available for this video"})
	assert.Equal(t, domain.ErrorKindGeneric, got.Kind)
	assert.False(t, got.OfferSignIn)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	kind, ok := KindOf("__AUTH__x")
	require.True(t, ok)
	assert.Equal(t, domain.ErrorKindAuthRequired, kind)

	_, ok = KindOf("x__AUTH__")
	assert.False(t, ok)
}
