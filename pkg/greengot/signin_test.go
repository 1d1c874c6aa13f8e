package greengot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader hands out a fixed sequence of input lines.
type scriptedReader struct {
	lines []string
}

func (s *scriptedReader) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestSigninRetriesAfterRateLimit(t *testing.T) {
	var bodies [][]byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, body)
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	client.signinBackoff = time.Millisecond

	require.NoError(t, client.Signin(context.Background(), "user@example.com"))
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "retry body must be byte-identical")
}

func TestSigninRetryLimit(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	client.signinBackoff = time.Millisecond
	client.signinMaxRetries = 3

	err := client.Signin(context.Background(), "user@example.com")
	var signinErr *SigninError
	require.True(t, errors.As(err, &signinErr))
	assert.Equal(t, http.StatusTooManyRequests, signinErr.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestSigninHardFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown email", http.StatusForbidden)
	}))

	err := client.Signin(context.Background(), "user@example.com")
	var signinErr *SigninError
	require.True(t, errors.As(err, &signinErr))
	assert.Equal(t, http.StatusForbidden, signinErr.StatusCode)
	assert.Contains(t, signinErr.Body, "unknown email")
}

func TestSigninBackoffHonorsCancellation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	client.signinBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Signin(ctx, "user@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckLoginCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"user@example.com","oneTimeCode":"123456","panLast4Digits":"4242"}`, string(body))
		w.Write([]byte(`{"idToken": "tok-new"}`))
	}))

	token, err := client.CheckLoginCode(context.Background(), "user@example.com", "123456", "4242")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
}

func TestCheckLoginCodeMissingToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	}))

	_, err := client.CheckLoginCode(context.Background(), "user@example.com", "123456", "4242")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestCheckLoginCodeRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusUnauthorized)
	}))

	_, err := client.CheckLoginCode(context.Background(), "user@example.com", "000000", "4242")
	var verifErr *VerificationError
	require.True(t, errors.As(err, &verifErr))
	assert.Equal(t, http.StatusUnauthorized, verifErr.StatusCode)
}

func TestInteractiveSignin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/signin":
			w.Write([]byte(`{}`))
		case "/v2/check-login-code":
			w.Write([]byte(`{"idToken": "tok-interactive"}`))
		default:
			http.NotFound(w, r)
		}
	}))

	var prompts bytes.Buffer
	lines := &scriptedReader{lines: []string{"user@example.com", "123456", "4242"}}

	token, err := client.InteractiveSignin(context.Background(), lines, &prompts)
	require.NoError(t, err)
	assert.Equal(t, "tok-interactive", token)
	assert.Equal(t, "tok-interactive", client.Token())
	assert.Contains(t, prompts.String(), "Enter email address")
	assert.Contains(t, prompts.String(), "user@example.com within a few seconds")
	assert.Contains(t, prompts.String(), "Enter confirmation code")
	assert.Contains(t, prompts.String(), "last 4 digits")
}
