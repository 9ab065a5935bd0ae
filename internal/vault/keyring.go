package vault

import "github.com/zalando/go-keyring"

// SystemKeyring is the OS credential store (Keychain, Secret Service,
// Credential Manager) via go-keyring.
type SystemKeyring struct{}

func NewSystemKeyring() *SystemKeyring {
	return &SystemKeyring{}
}

func (SystemKeyring) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

func (SystemKeyring) Get(service, account string) (string, error) {
	return keyring.Get(service, account)
}

func (SystemKeyring) Delete(service, account string) error {
	return keyring.Delete(service, account)
}
