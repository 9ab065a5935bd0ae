package vault

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
)

// machineFingerprint identifies this host+user combination. The obfuscation
// keystream is derived from it, so blobs written on one machine do not
// decrypt on another.
func machineFingerprint() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	return host + u.Username + runtime.GOOS, nil
}
