package greengot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// The signin endpoint rate-limits aggressively. The app just waits a fixed
// minute and tries again, showing progress in ten-second ticks.
const (
	signinBackoffTotal = 60 * time.Second
	signinBackoffTicks = 6
)

// LineReader supplies one line of user input. The interactive flow reads
// from it instead of the terminal directly so tests can script the exchange.
type LineReader interface {
	ReadLine() (string, error)
}

type stdinLineReader struct {
	r *bufio.Reader
}

// NewStdinReader returns a LineReader over standard input.
func NewStdinReader() LineReader {
	return &stdinLineReader{r: bufio.NewReader(os.Stdin)}
}

func (s *stdinLineReader) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Signin starts the verification flow by asking the API to email a one-time
// code to the given address. A 429 answer triggers a fixed backoff and a
// byte-identical resubmission; by default this repeats until the rate limit
// clears, since it is externally imposed and transient.
func (c *Client) Signin(ctx context.Context, email string) error {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("encoding signin request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := c.newRequest(ctx, http.MethodPost, "/v2/signin", nil, body)
		if err != nil {
			return err
		}

		status, respBody, err := c.do(req)
		if err != nil {
			return err
		}

		switch status {
		case http.StatusOK:
			return nil
		case http.StatusTooManyRequests:
			if c.signinMaxRetries > 0 && attempt+1 >= c.signinMaxRetries {
				return &SigninError{StatusCode: status, Body: string(respBody)}
			}
			c.logger.Warn("signin rate limited, backing off before retry", "wait", c.signinBackoff)
			if err := c.backoff(ctx); err != nil {
				return err
			}
		default:
			return &SigninError{StatusCode: status, Body: string(respBody)}
		}
	}
}

// backoff sleeps the fixed rate-limit window in ticks so the user sees the
// wait is progressing, honoring cancellation.
func (c *Client) backoff(ctx context.Context) error {
	tick := c.signinBackoff / signinBackoffTicks
	for i := 0; i < signinBackoffTicks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tick):
			c.logger.Info("still waiting on the signin rate limit", "remaining", c.signinBackoff-time.Duration(i+1)*tick)
		}
	}
	return nil
}

// CheckLoginCode exchanges the emailed one-time code plus the card's last
// four digits for a session token.
func (c *Client) CheckLoginCode(ctx context.Context, email, code, panLast4 string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":          email,
		"oneTimeCode":    code,
		"panLast4Digits": panLast4,
	})
	if err != nil {
		return "", fmt.Errorf("encoding verification request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v2/check-login-code", nil, body)
	if err != nil {
		return "", err
	}

	status, respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", &VerificationError{StatusCode: status, Body: string(respBody)}
	}

	var payload struct {
		IDToken *string `json:"idToken"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", fmt.Errorf("decoding verification response: %w", err)
	}
	if payload.IDToken == nil || *payload.IDToken == "" {
		return "", ErrMissingToken
	}
	return *payload.IDToken, nil
}

// InteractiveSignin drives the full three-step exchange over the given line
// source, blocking on user input between steps. On success the client keeps
// the new token for subsequent authenticated calls and returns it so the
// caller can persist it.
func (c *Client) InteractiveSignin(ctx context.Context, lines LineReader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter email address: ")
	email, err := lines.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading email address: %w", err)
	}

	if err := c.Signin(ctx, email); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "You should receive an email to %s within a few seconds\n", email)
	fmt.Fprint(out, "Enter confirmation code: ")
	code, err := lines.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading confirmation code: %w", err)
	}

	fmt.Fprint(out, "Enter last 4 digits of credit card: ")
	panLast4, err := lines.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading card digits: %w", err)
	}

	token, err := c.CheckLoginCode(ctx, email, code, panLast4)
	if err != nil {
		return "", err
	}

	c.token = token
	c.logger.Info("successfully connected to the account")
	return token, nil
}
