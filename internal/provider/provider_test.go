package provider

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hybridmsg/hybridmsg-go/internal/crypto"
)

var allSchemes = []string{
	crypto.SchemePQ1,
	crypto.SchemePQ5,
	crypto.SchemeClassical,
	crypto.SchemeHybridECDH,
}

func TestProvider_Init_ConcurrentCallersShareOneInitialization(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	p := New(crypto.SchemePQ1, WithLookup(func(scheme string) (*crypto.Suite, error) {
		calls.Add(1)
		<-release
		return crypto.Lookup(scheme)
	}))

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Init(context.Background())
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: Init() error = %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("suite initializations = %d, want 1", got)
	}

	if err := p.Init(context.Background()); err != nil {
		t.Errorf("Init() after completion error = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("suite initializations after repeat = %d, want 1", got)
	}
}

func TestProvider_Init_UnknownScheme(t *testing.T) {
	var calls atomic.Int32
	p := New("no-such-scheme", WithLookup(func(scheme string) (*crypto.Suite, error) {
		calls.Add(1)
		return crypto.Lookup(scheme)
	}))

	for i := 0; i < 3; i++ {
		if err := p.Init(context.Background()); !errors.Is(err, crypto.ErrConfiguration) {
			t.Fatalf("Init() error = %v, want ErrConfiguration", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("lookups = %d, want 1", got)
	}

	if _, err := p.GenerateKEMKeyPair(); !errors.Is(err, crypto.ErrConfiguration) {
		t.Errorf("GenerateKEMKeyPair() error = %v, want ErrConfiguration", err)
	}
}

func TestProvider_Init_ContextBoundsWait(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	p := New(crypto.SchemePQ1, WithLookup(func(scheme string) (*crypto.Suite, error) {
		<-release
		return crypto.Lookup(scheme)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := p.Init(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Init() error = %v, want DeadlineExceeded", err)
	}
}

func TestProvider_GenerateKeyPairs(t *testing.T) {
	for _, scheme := range allSchemes {
		t.Run(scheme, func(t *testing.T) {
			p := New(scheme)
			suite, err := p.Suite()
			if err != nil {
				t.Fatal(err)
			}

			kemKP, err := p.GenerateKEMKeyPair()
			if err != nil {
				t.Fatalf("GenerateKEMKeyPair() error = %v", err)
			}
			if !suite.ValidKEMKeyPair(kemKP) {
				t.Error("KEM key pair has wrong sizes")
			}

			dsaKP, err := p.GenerateDSAKeyPair()
			if err != nil {
				t.Fatalf("GenerateDSAKeyPair() error = %v", err)
			}
			if !suite.ValidSignKeyPair(dsaKP) {
				t.Error("signature key pair has wrong sizes")
			}
		})
	}
}

func TestProvider_GenerateTeamKeys(t *testing.T) {
	p := New(crypto.SchemePQ1)
	suite, err := p.Suite()
	if err != nil {
		t.Fatal(err)
	}

	member, err := p.GenerateKEMKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	keys, err := p.GenerateTeamKeys(member)
	if err != nil {
		t.Fatalf("GenerateTeamKeys() error = %v", err)
	}
	if err := keys.Validate(suite); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if !crypto.Equal(keys.MemberKEMPublic, member.PublicKey) {
		t.Error("member public key not bound to the set")
	}

	fresh, err := p.GenerateTeamKeys(crypto.KeyPair{})
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.Validate(suite); err != nil {
		t.Errorf("Validate() with generated member error = %v", err)
	}
}

func TestProvider_Init_CompletedIgnoresCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(crypto.SchemePQ1)
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	for i := 0; i < 100; i++ {
		if err := p.Init(ctx); err != nil {
			t.Fatalf("Init(cancelled) after completion error = %v, want nil", err)
		}
	}

	failed := New("no-such-scheme")
	_ = failed.Init(context.Background())
	for i := 0; i < 100; i++ {
		if err := failed.Init(ctx); !errors.Is(err, crypto.ErrConfiguration) {
			t.Fatalf("Init(cancelled) error = %v, want ErrConfiguration", err)
		}
	}
}
