package connector

import (
	"fmt"
	"sort"
	"sync"
)

// Credentials are the decrypted account settings handed to a constructor.
type Credentials map[string]string

// SocialConstructor builds a SocialConnector from account credentials.
type SocialConstructor func(creds Credentials) (SocialConnector, error)

// EmailConstructor builds an EmailConnector from account credentials.
type EmailConstructor func(creds Credentials) (EmailConnector, error)

var (
	mu     sync.RWMutex
	social = make(map[string]SocialConstructor)
	email  = make(map[string]EmailConstructor)
)

// RegisterSocial makes a social connector available by platform name.
// It is typically called from an init() function in the adapter package.
func RegisterSocial(platform string, ctor SocialConstructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := social[platform]; exists {
		panic(fmt.Sprintf("connector: duplicate social registration for %q", platform))
	}
	social[platform] = ctor
}

// RegisterEmail makes an email connector available by provider name.
func RegisterEmail(provider string, ctor EmailConstructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := email[provider]; exists {
		panic(fmt.Sprintf("connector: duplicate email registration for %q", provider))
	}
	email[provider] = ctor
}

// NewSocial builds a social connector for platform.
func NewSocial(platform string, creds Credentials) (SocialConnector, error) {
	mu.RLock()
	ctor, ok := social[platform]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("connector: unknown social platform %q", platform)
	}
	return ctor(creds)
}

// NewEmail builds an email connector for provider.
func NewEmail(provider string, creds Credentials) (EmailConnector, error) {
	mu.RLock()
	ctor, ok := email[provider]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("connector: unknown email provider %q", provider)
	}
	return ctor(creds)
}

// IsEmail reports whether name is a registered email provider.
func IsEmail(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := email[name]
	return ok
}

// Available returns the sorted names of all registered social platforms and
// email providers.
func Available() (socialNames, emailNames []string) {
	mu.RLock()
	defer mu.RUnlock()

	for name := range social {
		socialNames = append(socialNames, name)
	}
	for name := range email {
		emailNames = append(emailNames, name)
	}
	sort.Strings(socialNames)
	sort.Strings(emailNames)
	return socialNames, emailNames
}
