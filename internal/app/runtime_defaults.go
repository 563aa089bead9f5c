package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const fingerprintKeyBytes = 32

// ApplyRuntimeDefaults ensures critical secrets are populated even when no configuration file is supplied.
// It returns a map describing which keys were generated so callers can log the event without exposing values.
// A generated fingerprint key changes on every restart, which resets the
// contact deduplication and rate limit keys.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	if strings.TrimSpace(cfg.Contact.FingerprintKey) == "" {
		secret, err := generateHexKey(fingerprintKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("generate fingerprint key: %w", err)
		}
		cfg.Contact.FingerprintKey = secret
		generated["contact.fingerprint_key"] = true
	}

	if strings.TrimSpace(cfg.Server.AssetVersion) == "" {
		cfg.Server.AssetVersion = fmt.Sprint(time.Now().Unix())
		generated["server.asset_version"] = true
	}

	return generated, nil
}

func generateHexKey(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
