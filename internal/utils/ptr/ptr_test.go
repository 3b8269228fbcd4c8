package ptr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo(t *testing.T) {
	s := "World"
	p := To(s)
	require.NotNil(t, p)
	assert.Equal(t, s, *p)
	assert.NotSame(t, &s, p)
}

func TestFinite(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		nil  bool
	}{
		{"zero", 0, false},
		{"value", 71.5, false},
		{"negative", -0.42, false},
		{"nan", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Finite(tt.in)
			if tt.nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.in, *got)
		})
	}
}
