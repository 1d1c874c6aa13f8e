package greengot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CheckMinimumVersion asks the API which app version it still accepts and
// compares it against AppVersion. An unsupported client is fatal to the
// whole run: there is no degraded mode.
func (c *Client) CheckMinimumVersion(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/minimumVersion", nil, nil)
	if err != nil {
		return err
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &RequestError{StatusCode: status, Body: string(body)}
	}

	var payload struct {
		MinimumVersion string `json:"minimumVersion"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decoding minimumVersion response: %w", err)
	}
	if payload.MinimumVersion == "" {
		return fmt.Errorf("minimumVersion response has no minimumVersion field")
	}

	cmp, err := compareVersions(AppVersion, payload.MinimumVersion)
	if err != nil {
		return fmt.Errorf("comparing versions: %w", err)
	}
	if cmp < 0 {
		return &UnsupportedVersionError{ClientVersion: AppVersion, MinimumVersion: payload.MinimumVersion}
	}

	c.logger.Debug("client version accepted by the API", "client", AppVersion, "minimum", payload.MinimumVersion)
	return nil
}

// compareVersions compares two dotted numeric versions component by
// component, not lexically. Missing components count as zero, so "1.7" and
// "1.7.0" are equal.
func compareVersions(a, b string) (int, error) {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, err := versionComponent(as, i)
		if err != nil {
			return 0, fmt.Errorf("version %q: %w", a, err)
		}
		bv, err := versionComponent(bs, i)
		if err != nil {
			return 0, fmt.Errorf("version %q: %w", b, err)
		}
		if av != bv {
			if av < bv {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, nil
}

func versionComponent(parts []string, i int) (int, error) {
	if i >= len(parts) {
		return 0, nil
	}
	v, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0, fmt.Errorf("non-numeric component %q", parts[i])
	}
	return v, nil
}
