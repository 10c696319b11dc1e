package hybridmsg

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

// Scheme identifiers of the built-in suites.
const (
	// SchemePQ1 is ML-KEM-768, ML-DSA-65 and AES-256-GCM.
	SchemePQ1 = crypto.SchemePQ1
	// SchemePQ5 is ML-KEM-1024, ML-DSA-87 and AES-256-GCM.
	SchemePQ5 = crypto.SchemePQ5
	// SchemeClassical is X25519, Ed25519 and ChaCha20-Poly1305.
	SchemeClassical = crypto.SchemeClassical
	// SchemeHybridECDH is X25519MLKEM768, Ed25519-Dilithium3 and AES-256-GCM.
	SchemeHybridECDH = crypto.SchemeHybridECDH
	// DefaultScheme is used when no scheme is configured.
	DefaultScheme = crypto.DefaultScheme
)

// Schemes returns the registered scheme identifiers in sorted order.
func Schemes() []string {
	return crypto.Schemes()
}

// config holds configuration shared by coordinators and participants.
type config struct {
	scheme      string
	logger      *zap.Logger
	concurrency int
	clock       func() time.Time
	teamKeys    *TeamKeySet
}

// Option configures a Coordinator or Participant.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		scheme:      DefaultScheme,
		logger:      zap.NewNop(),
		concurrency: runtime.NumCPU(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithScheme selects the primitive suite.
// Default: pq-1
func WithScheme(scheme string) Option {
	return func(c *config) {
		c.scheme = scheme
	}
}

// WithLogger sets the logger. Secret key material is never logged.
// Default: a no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConcurrency limits how many recipients of one mailbox batch are
// encrypted in parallel.
// Default: runtime.NumCPU()
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithClock sets the time source used for block timestamps and stats.
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTeamKeys binds team keys at initialization. The member pair of the
// set is replaced by the owner's own KEM key pair.
func WithTeamKeys(keys *TeamKeySet) Option {
	return func(c *config) {
		c.teamKeys = keys
	}
}
