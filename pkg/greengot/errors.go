package greengot

import (
	"errors"
	"fmt"
)

// ErrReauthRequired is returned when the API rejects the stored session
// token. Re-authentication is the caller's decision; the client never retries
// with a fresh signin on its own.
var ErrReauthRequired = errors.New("session token rejected by the API, delete the auth file and sign in again")

// ErrMissingToken means the verification endpoint answered 200 but the
// response carried no idToken field. The server broke its own contract.
var ErrMissingToken = errors.New("unable to find idToken in verification response")

// RequestError is any authenticated or version-gate call that came back with
// an unexpected status. The body is kept verbatim for diagnosis.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

// SigninError is a non-retryable failure of the signin-start step.
type SigninError struct {
	StatusCode int
	Body       string
}

func (e *SigninError) Error() string {
	return fmt.Sprintf("signin failed with status %d: %s", e.StatusCode, e.Body)
}

// VerificationError is a failure exchanging the one-time code for a token.
type VerificationError struct {
	StatusCode int
	Body       string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("code verification failed with status %d: %s", e.StatusCode, e.Body)
}

// UnsupportedVersionError means the API no longer accepts our client
// version. Nothing else can proceed: time to re-explore the API routes.
type UnsupportedVersionError struct {
	ClientVersion  string
	MinimumVersion string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("client version %s is below the API minimum %s", e.ClientVersion, e.MinimumVersion)
}
