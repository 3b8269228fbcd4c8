package figures

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFigureAddSkipsMissing(t *testing.T) {
	f := New("days", KindBar, "Mean delay")
	assert.True(t, f.Add("Monday", 3))
	assert.False(t, f.Add("Tuesday", math.NaN()))
	assert.False(t, f.Add("Wednesday", math.Inf(1)))
	assert.Equal(t, 1, f.Len())

	_, err := json.Marshal(f)
	require.NoError(t, err)
}

func TestFinish(t *testing.T) {
	f := New("causes", KindHBar, "Causes").Finish("Causes not available")
	assert.True(t, f.Empty)
	assert.Equal(t, "Causes not available", f.Title)

	g := New("days", KindBar, "Mean delay")
	g.Add("Monday", 1)
	g.Finish("No data")
	assert.False(t, g.Empty)
	assert.Equal(t, "Mean delay", g.Title)
}

func TestNumber(t *testing.T) {
	assert.Nil(t, Number(math.NaN()))
	require.NotNil(t, Number(2.5))
	assert.Equal(t, 2.5, *Number(2.5))
}
