package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "wqrun"

// ResolvePassword fills in the profile password from the OS keyring when the
// profile needs credentials and none is configured. A missing keyring entry
// is not an error; the driver will report the failed login.
func ResolvePassword(c Connection) (Connection, error) {
	if c.Trusted || c.Password != "" || c.Username == "" {
		return c, nil
	}

	secret, err := keyring.Get(keyringService, secretKey(c))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return c, nil
		}
		return c, fmt.Errorf("read keyring: %w", err)
	}

	c.Password = secret
	return c, nil
}

// SetPassword stores the password for the profile in the OS keyring.
func SetPassword(c Connection, password string) error {
	if err := keyring.Set(keyringService, secretKey(c), password); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// DeletePassword removes the stored password for the profile.
func DeletePassword(c Connection) error {
	err := keyring.Delete(keyringService, secretKey(c))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring: %w", err)
	}
	return nil
}

func secretKey(c Connection) string {
	return c.Name + ":" + c.Username
}
