package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound means no credential file exists yet. This is a recognized
// state, not a failure: the caller bootstraps a fresh device identity and
// runs the signin flow.
var ErrNotFound = errors.New("no stored credential")

// MalformedRecordError means the credential file exists but is unusable.
// Losing the device identity unregisters the phone on the API side, so we
// never paper over a damaged file with defaults.
type MalformedRecordError struct {
	Path   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("credential file %s is malformed: %s", e.Path, e.Reason)
}

// Credential is the durable identity tying this install to the account.
// DeviceID is generated once and never changes; IDToken is replaced whenever
// the signin flow runs again.
type Credential struct {
	IDToken  string `json:"id_token"`
	DeviceID string `json:"device_id"`
}

// NewDeviceID generates a fresh device identity for first-time registration.
func NewDeviceID() string {
	return uuid.NewString()
}

// Load reads the credential file at path. Both id_token and device_id keys
// must be present in an existing file.
func Load(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedRecordError{Path: path, Reason: err.Error()}
	}
	for _, field := range []string{"id_token", "device_id"} {
		if _, ok := raw[field]; !ok {
			return nil, &MalformedRecordError{Path: path, Reason: fmt.Sprintf("missing field %q", field)}
		}
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, &MalformedRecordError{Path: path, Reason: err.Error()}
	}
	if cred.DeviceID == "" {
		return nil, &MalformedRecordError{Path: path, Reason: "empty device_id"}
	}
	return &cred, nil
}

// Save writes the full credential record, replacing any previous content.
// The write goes through a temp file and a rename so a crash mid-write never
// leaves a truncated credential behind.
func Save(path string, cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".auth-*.json")
	if err != nil {
		return fmt.Errorf("creating temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credential: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting credential permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing credential file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing credential file: %w", err)
	}
	return nil
}
