package provider

import "time"

// Timings holds measured time per protocol phase.
type Timings struct {
	Encrypt time.Duration
	Sign    time.Duration
	Decrypt time.Duration
	Verify  time.Duration
}

// Add accumulates o into t.
func (t *Timings) Add(o Timings) {
	t.Encrypt += o.Encrypt
	t.Sign += o.Sign
	t.Decrypt += o.Decrypt
	t.Verify += o.Verify
}

// Total is the sum of all phases.
func (t Timings) Total() time.Duration {
	return t.Encrypt + t.Sign + t.Decrypt + t.Verify
}

// measure runs fn and adds its duration to *d.
func measure(d *time.Duration, fn func() error) error {
	start := time.Now()
	err := fn()
	*d += time.Since(start)
	return err
}
