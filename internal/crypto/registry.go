package crypto

import (
	"sort"
	"sync"

	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem/hybrid"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/cloudflare/circl/sign/eddilithium3"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
)

// Factory builds a suite. Factories run once per provider initialization.
type Factory func() (*Suite, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		SchemePQ1: func() (*Suite, error) {
			return &Suite{
				Name:   SchemePQ1,
				KEM:    mlkem768.Scheme(),
				Signer: mldsa65.Scheme(),
				Cipher: AES256GCM,
				Target: SignPlaintext,
			}, nil
		},
		SchemePQ5: func() (*Suite, error) {
			return &Suite{
				Name:   SchemePQ5,
				KEM:    mlkem1024.Scheme(),
				Signer: mldsa87.Scheme(),
				Cipher: AES256GCM,
				Target: SignPlaintext,
			}, nil
		},
		SchemeClassical: func() (*Suite, error) {
			return &Suite{
				Name:   SchemeClassical,
				KEM:    hpke.KEM_X25519_HKDF_SHA256.Scheme(),
				Signer: ed25519.Scheme(),
				Cipher: ChaCha20Poly1305,
				Target: SignEnvelope,
			}, nil
		},
		SchemeHybridECDH: func() (*Suite, error) {
			return &Suite{
				Name:   SchemeHybridECDH,
				KEM:    hybrid.X25519MLKEM768(),
				Signer: eddilithium3.Scheme(),
				Cipher: AES256GCM,
				Target: SignPlaintext,
			}, nil
		},
	}
)

// Register adds a suite factory under name. Registering an existing name
// fails with a ConfigurationError.
func Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return &ConfigurationError{Scheme: name, Message: "name and factory are required"}
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return &ConfigurationError{Scheme: name, Message: "scheme already registered"}
	}
	registry[name] = factory
	return nil
}

// Lookup builds and validates the suite registered under name.
func Lookup(name string) (*Suite, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Scheme: name, Message: "unknown scheme"}
	}

	suite, err := factory()
	if err != nil {
		return nil, &ConfigurationError{Scheme: name, Message: "suite factory failed", Err: err}
	}
	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

// Schemes returns the registered scheme identifiers in sorted order.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
