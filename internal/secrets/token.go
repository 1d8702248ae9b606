package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"pricescout-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "pricescout"
)

func GetTrackerToken(keyringAccount string) (string, error) {
	// 1) Keyring first (recommended)
	if strings.TrimSpace(keyringAccount) != "" {
		tok, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(tok) != "" {
			return tok, nil
		}
	}

	// 2) Env fallback (covers headless machines without a keychain)
	if tok := strings.TrimSpace(os.Getenv("PRICESCOUT_TRACKER_TOKEN")); tok != "" {
		return tok, nil
	}

	return "", errors.New("tracker API token not found (set it in keychain or via env)")
}

func SetTrackerToken(keyringAccount string, token string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, token)
}

func DeleteTrackerToken(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func TrackerKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"pricescout:tracker:%s@%s",
		cfg.Tracker.Email,
		cfg.Tracker.SiteURL,
	)
}
