package importer

import (
	"fmt"
	"math"

	"github.com/partwise/partwise/internal/score"
)

const ticksPerQuarter = int64(score.TicksPerQuarter)

// Fraction is a rational number used for lossless timing conversion
// from source division units to 960 PPQ ticks. Keeping the exact ratio
// until the final rounding step means triplets and other non-binary
// divisions convert without accumulating drift.
type Fraction struct {
	Num int64
	Den int64
}

// NewFraction constructs a fraction reduced to lowest terms.
func NewFraction(num, den int64) Fraction {
	return Fraction{Num: num, Den: den}.normalize()
}

// fractionFromDivisions builds the tick fraction for a duration
// expressed in source division units: duration * 960 / divisions.
func fractionFromDivisions(duration, divisions int) (Fraction, error) {
	if divisions <= 0 {
		return Fraction{}, fmt.Errorf("divisions must be positive, got %d", divisions)
	}
	d := int64(duration)
	if d > math.MaxInt64/ticksPerQuarter {
		return Fraction{}, fmt.Errorf("duration %d overflows tick arithmetic", duration)
	}
	return NewFraction(d*ticksPerQuarter, int64(divisions)), nil
}

func (f Fraction) normalize() Fraction {
	g := gcd(f.Num, f.Den)
	if g == 0 {
		return f
	}
	return Fraction{Num: f.Num / g, Den: f.Den / g}
}

// ToTicks converts the fraction to integer ticks, rounding half away
// from zero when the value is not exact.
func (f Fraction) ToTicks() int64 {
	if f.Den == 1 {
		return f.Num
	}
	return (f.Num + f.Den/2) / f.Den
}

// RequiresRounding reports whether ToTicks loses precision.
func (f Fraction) RequiresRounding() bool {
	return f.Den != 1
}

// Drifts reports whether the rounding delta exceeds 0.1 ticks, the
// threshold past which the source encodes a duration the fixed tick
// resolution cannot represent. Evaluated in integer arithmetic:
// |num - rounded*den| * 10 > den.
func (f Fraction) Drifts() bool {
	if f.Den == 1 {
		return false
	}
	delta := f.Num - f.ToTicks()*f.Den
	if delta < 0 {
		delta = -delta
	}
	return delta*10 > f.Den
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
