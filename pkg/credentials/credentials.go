package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stocksure/deployctl/pkg/errdefs"
)

// RequiredFields must all be present and non-empty for a credential object
// to be deployable.
var RequiredFields = []string{
	"type", "project_id", "private_key_id", "private_key",
	"client_email", "client_id", "auth_uri", "token_uri",
}

// Credentials is a parsed service-account credential object. It is kept as
// a generic map so unknown fields survive the format round trip.
type Credentials map[string]interface{}

// Parse decodes a service-account JSON document.
func Parse(data []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid credential JSON: %w", err)
	}
	return c, nil
}

// Format serializes credentials as compact single-line JSON, suitable for
// pasting into a platform environment variable. Parse(Format(c)) always
// yields c again for valid credentials.
func Format(c Credentials) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialize credentials: %w", err)
	}
	return string(data), nil
}

// ValidateStructure reports whether every required field is present and
// truthy. It does not check field shapes; that is the validator's job. This
// is a quick gate run before formatting, deliberately weaker than the full
// credential check.
func ValidateStructure(c Credentials) bool {
	for _, field := range RequiredFields {
		v, ok := c[field]
		if !ok {
			return false
		}
		s, isString := v.(string)
		if isString && s == "" {
			return false
		}
		if v == nil {
			return false
		}
	}
	return true
}

// MaskSensitive returns a display-safe copy: the private key collapses to
// its first and last 30 characters, key and client ids to their first 8.
// Everything else passes through unchanged.
func MaskSensitive(c Credentials) Credentials {
	masked := make(Credentials, len(c))
	for k, v := range c {
		masked[k] = v
	}

	if key, ok := c["private_key"].(string); ok && len(key) > 60 {
		masked["private_key"] = key[:30] + "...[REDACTED]..." + key[len(key)-30:]
	}
	for _, field := range []string{"private_key_id", "client_id"} {
		if v, ok := c[field].(string); ok && len(v) > 8 {
			masked[field] = v[:8] + "...[REDACTED]"
		}
	}
	return masked
}

// Prepared is the result of preparing credentials for deployment.
type Prepared struct {
	FormattedCredentials string
	OutputPath           string
	MaskedCredentials    Credentials
}

// Preparer reads a service-account file, validates it, and writes the
// single-line deployable form.
type Preparer struct {
	// CredentialPath is the service-account JSON file to read.
	CredentialPath string

	// OutputPath receives the formatted single-line credential string.
	OutputPath string
}

// Prepare reads, validates, formats, and writes the credentials, returning
// the formatted string together with a masked view for display.
func (p Preparer) Prepare() (*Prepared, error) {
	data, err := os.ReadFile(p.CredentialPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.New(errdefs.CodeCredentialMissing,
				fmt.Sprintf("service account file not found at %s", p.CredentialPath),
				"download the service account key from the Firebase console",
				fmt.Sprintf("save it as %s", p.CredentialPath))
		}
		return nil, errdefs.Wrap(err, errdefs.CodeCredentialInvalid,
			"failed to read service account file")
	}

	creds, err := Parse(data)
	if err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeCredentialInvalid,
			"service account file is not valid JSON",
			"re-download the service account key; it may be truncated")
	}

	if !ValidateStructure(creds) {
		return nil, errdefs.New(errdefs.CodeCredentialIncomplete,
			"service account file is missing required fields",
			"re-download the service account key from the Firebase console")
	}

	formatted, err := Format(creds)
	if err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeCredentialInvalid,
			"failed to format credentials")
	}

	if err := os.MkdirAll(filepath.Dir(p.OutputPath), 0o755); err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeCredentialInvalid,
			"failed to create output directory")
	}
	if err := os.WriteFile(p.OutputPath, []byte(formatted), 0o600); err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeCredentialInvalid,
			"failed to write formatted credentials")
	}

	return &Prepared{
		FormattedCredentials: formatted,
		OutputPath:           p.OutputPath,
		MaskedCredentials:    MaskSensitive(creds),
	}, nil
}
