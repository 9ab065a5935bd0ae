// Package vault encrypts individual secret strings for at-rest storage.
//
// Backends are tried in priority order: the OS credential store first, then
// a reversible obfuscation keyed by a machine fingerprint. A persisted value
// carries its backend as a tag prefix:
//
//	VAULT:<identity>    value held in the OS credential store
//	v1:<base64>         obfuscated bytes (fingerprint-keyed XOR)
//	<anything else>     legacy plaintext, readable but never written
//
// "KEYRING:" is accepted on read as an alias of "VAULT:" so documents
// written by earlier releases keep decrypting; it is never written.
//
// When even obfuscation is impossible (no resolvable fingerprint) the secret
// is stored unmodified. That is a deliberate availability-over-
// confidentiality trade-off inherited from the store format: a session the
// operator cannot read back is worth less than a weakly protected one.
package vault

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
)

const (
	vaultTag       = "VAULT:"
	legacyVaultTag = "KEYRING:"
	obfuscateTag   = "v1:"
)

// Keyring abstracts the OS credential store (macOS Keychain, Secret
// Service, Windows Credential Manager). Implementations must key entries by
// (service, account) pairs.
type Keyring interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// Vault encrypts and decrypts secrets under a fixed service name.
type Vault struct {
	service     string
	keyring     Keyring
	fingerprint func() (string, error)
	log         logging.Logger
}

// New builds a Vault over the given keyring. A nil keyring disables the OS
// backend entirely (every secret goes through obfuscation).
func New(service string, kr Keyring, log logging.Logger) *Vault {
	return &Vault{
		service:     service,
		keyring:     kr,
		fingerprint: machineFingerprint,
		log:         log,
	}
}

// accountName maps a caller identity onto the keyring account slot. Bare
// account ids become "session_<id>"; derived identities (which already
// contain an underscore, e.g. "app_platform_42") are used as-is.
func accountName(identity string) string {
	if strings.Contains(identity, "_") {
		return identity
	}
	return "session_" + identity
}

// Encrypt stores secret under identity and returns the tagged reference to
// persist. It never fails: every backend failure falls through to the next
// one, ending at plaintext.
func (v *Vault) Encrypt(ctx context.Context, secret, identity string) string {
	account := accountName(identity)

	if v.keyring != nil {
		// Replace rather than update; a stale entry must not survive.
		_ = v.keyring.Delete(v.service, account)
		err := v.keyring.Set(v.service, account, secret)
		if err == nil {
			return vaultTag + account
		}
		v.log.Warn(ctx, "keyring storage failed, using fallback", "account", account, "error", err)
	}

	blob, err := v.obfuscate(secret)
	if err != nil {
		v.log.Warn(ctx, "fallback encryption failed, storing plaintext", "error", err)
		return secret
	}
	return obfuscateTag + blob
}

// Decrypt resolves a tagged reference back to the secret. The second return
// is false when the reference cannot be resolved (keyring entry gone,
// fingerprint mismatch, malformed blob); a wrong key never yields garbage
// because the blob fails base64 or the keyring lookup errors first; callers
// treat false as "credential expired".
func (v *Vault) Decrypt(ctx context.Context, reference, identity string) (string, bool) {
	if reference == "" {
		return "", false
	}

	account, ok := strings.CutPrefix(reference, vaultTag)
	if !ok {
		account, ok = strings.CutPrefix(reference, legacyVaultTag)
	}
	if ok {
		if v.keyring == nil {
			v.log.Warn(ctx, "value held in keyring but no keyring backend available")
			return "", false
		}
		secret, err := v.keyring.Get(v.service, account)
		if err != nil {
			v.log.Warn(ctx, "keyring retrieval failed", "account", account, "error", err)
			return "", false
		}
		return secret, true
	}

	if blob, ok := strings.CutPrefix(reference, obfuscateTag); ok {
		secret, err := v.deobfuscate(blob)
		if err != nil {
			v.log.Warn(ctx, "fallback decryption failed", "error", err)
			return "", false
		}
		return secret, true
	}

	v.log.Warn(ctx, "detected plaintext credential in store (not encrypted)")
	return reference, true
}

// IsEncrypted reports whether reference carries a recognized backend tag.
// Untagged values classify as legacy plaintext.
func IsEncrypted(reference string) bool {
	return strings.HasPrefix(reference, vaultTag) ||
		strings.HasPrefix(reference, legacyVaultTag) ||
		strings.HasPrefix(reference, obfuscateTag)
}

// obfuscate XORs the secret against a keystream derived from the machine
// fingerprint and base64-encodes the result. Weak against a co-resident
// attacker; only used when no OS credential store is reachable.
func (v *Vault) obfuscate(secret string) (string, error) {
	key, err := v.keystream()
	if err != nil {
		return "", err
	}
	data := []byte(secret)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (v *Vault) deobfuscate(blob string) (string, error) {
	key, err := v.keystream()
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("decode blob: %w", err)
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	// A blob written under another machine's fingerprint XORs into noise;
	// reject it instead of handing garbage to the caller.
	if !utf8.Valid(out) {
		return "", fmt.Errorf("blob does not decrypt under this machine fingerprint")
	}
	return string(out), nil
}

func (v *Vault) keystream() ([]byte, error) {
	fp, err := v.fingerprint()
	if err != nil {
		return nil, fmt.Errorf("machine fingerprint: %w", err)
	}
	sum := sha256.Sum256([]byte(fp))
	return sum[:], nil
}
