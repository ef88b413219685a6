// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package rate

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/go-core-stack/capacity/errors"
)

// epoch anchors the virtual clock, any instant far from the zero time
// works since the limiter only looks at differences
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Pacer spaces grants of a sustained speed on a virtual clock. It is
// backed by a token bucket of burst one whose initial token is spent
// at the origin, so the n-th call to Next lands n intervals after it.
// Nothing ever sleeps, reservations are taken at the origin instant
// and only their delays are read back.
type Pacer struct {
	limiter *rate.Limiter
	origin  time.Time
}

// NewPacer returns a pacer granting speed requests per millisecond.
func NewPacer(speed float64) (*Pacer, error) {
	if speed <= 0 {
		return nil, errors.Wrapf(errors.InvalidArgument, "pacer speed must be positive, got %v", speed)
	}
	p := &Pacer{
		limiter: rate.NewLimiter(rate.Limit(speed*1000), 1),
		origin:  epoch,
	}
	// drain the initial burst so grants start one interval out
	p.limiter.ReserveN(p.origin, 1)
	return p, nil
}

// Next returns the offset in milliseconds from the origin at which
// the next grant becomes available.
func (p *Pacer) Next() float64 {
	r := p.limiter.ReserveN(p.origin, 1)
	ms := float64(r.DelayFrom(p.origin)) / float64(time.Millisecond)
	// the limiter truncates to whole nanoseconds
	return math.Round(ms*1e3) / 1e3
}

// Offsets returns the next n grant offsets in milliseconds.
func (p *Pacer) Offsets(n int) []float64 {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Next())
	}
	return out
}
