package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFractionFromDivisions_ExactConversions(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		divisions int
		ticks     int64
		rounded   bool
	}{
		{"quarter at 480", 480, 480, 960, false},
		{"half at 480", 960, 480, 1920, false},
		{"whole at 480", 1920, 480, 3840, false},
		{"eighth at 480", 240, 480, 480, false},
		{"sixteenth at 480", 120, 480, 240, false},
		{"quarter at 1", 1, 1, 960, false},
		{"triplet eighth at 768", 256, 768, 320, false},
		{"quarter at 960", 960, 960, 960, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := fractionFromDivisions(tt.duration, tt.divisions)
			require.NoError(t, err)
			assert.Equal(t, tt.ticks, f.ToTicks())
			assert.Equal(t, tt.rounded, f.RequiresRounding())
			assert.False(t, f.Drifts())
		})
	}
}

func TestFractionFromDivisions_InvalidInputs(t *testing.T) {
	_, err := fractionFromDivisions(480, 0)
	assert.Error(t, err)

	_, err = fractionFromDivisions(480, -1)
	assert.Error(t, err)

	_, err = fractionFromDivisions(int(int64(1)<<53), 480)
	assert.NoError(t, err, "large but representable durations still convert")
}

func TestNewFraction_Normalizes(t *testing.T) {
	f := NewFraction(480*960, 480)
	assert.Equal(t, int64(960), f.Num)
	assert.Equal(t, int64(1), f.Den)

	f = NewFraction(6, 4)
	assert.Equal(t, int64(3), f.Num)
	assert.Equal(t, int64(2), f.Den)
}

func TestFraction_RoundingHalfAwayFromZero(t *testing.T) {
	// 3/2 rounds up to 2.
	f := NewFraction(3, 2)
	assert.Equal(t, int64(2), f.ToTicks())
	assert.True(t, f.RequiresRounding())

	// 7/3 rounds to 2 with a 1/3 tick delta.
	f = NewFraction(7, 3)
	assert.Equal(t, int64(2), f.ToTicks())
}

func TestFraction_Drifts(t *testing.T) {
	tests := []struct {
		name   string
		num    int64
		den    int64
		drifts bool
	}{
		{"exact", 960, 1, false},
		{"half tick delta", 1, 2, true},
		{"third tick delta", 7, 3, true},
		{"tiny delta", 9600001, 10000000, false},
		{"exactly a tenth of a tick", 11, 10, false},
		{"just past a tenth of a tick", 1100001, 1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFraction(tt.num, tt.den)
			assert.Equal(t, tt.drifts, f.Drifts())
		})
	}
}
