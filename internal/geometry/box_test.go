package geometry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewBox_OrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 5, 8)
	assert.InDelta(t, 5.0, b.MinX, 1e-9)
	assert.InDelta(t, 8.0, b.MinY, 1e-9)
	assert.InDelta(t, 10.0, b.MaxX, 1e-9)
	assert.InDelta(t, 20.0, b.MaxY, 1e-9)
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		boxes    []Box
		expected Box
	}{
		{
			name:     "empty input yields zero box",
			boxes:    nil,
			expected: Box{},
		},
		{
			name:     "single box",
			boxes:    []Box{NewBox(1, 2, 3, 4)},
			expected: NewBox(1, 2, 3, 4),
		},
		{
			name: "disjoint boxes",
			boxes: []Box{
				NewBox(0, 0, 10, 10),
				NewBox(20, 30, 40, 50),
			},
			expected: NewBox(0, 0, 40, 50),
		},
		{
			name: "nested boxes",
			boxes: []Box{
				NewBox(0, 0, 100, 100),
				NewBox(10, 10, 20, 20),
			},
			expected: NewBox(0, 0, 100, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Merge(tt.boxes))
		})
	}
}

func TestMerge_ContainsInputs(t *testing.T) {
	boxes := []Box{
		NewBox(5, 5, 15, 15),
		NewBox(0, 10, 3, 12),
		NewBox(7, 1, 9, 30),
	}
	merged := Merge(boxes)
	for _, b := range boxes {
		assert.True(t, merged.Contains(b))
	}
}

func TestDistance(t *testing.T) {
	a := NewBox(0, 0, 10, 10)   // center (5, 5)
	b := NewBox(30, 45, 50, 55) // center (40, 50)
	expected := math.Hypot(35, 45)
	assert.InDelta(t, expected, Distance(a, b), 1e-9)

	// Distance is symmetric and zero for identical centers.
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	assert.InDelta(t, 0.0, Distance(a, a), 1e-9)
}

func TestBox_Center(t *testing.T) {
	b := NewBox(0, 0, 10, 20)
	c := b.Center()
	assert.InDelta(t, 5.0, c.X, 1e-9)
	assert.InDelta(t, 10.0, c.Y, 1e-9)
}

func TestBox_IsZero(t *testing.T) {
	assert.True(t, Box{}.IsZero())
	assert.False(t, NewBox(0, 0, 1, 1).IsZero())
}

func TestBox_JSONRoundTrip(t *testing.T) {
	b := NewBox(1.5, 2.5, 3.5, 4.5)
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, "[1.5,2.5,3.5,4.5]", string(data))

	var back Box
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}

func TestBox_UnmarshalJSON_WrongArity(t *testing.T) {
	var b Box
	err := json.Unmarshal([]byte("[1,2,3]"), &b)
	require.Error(t, err)
}

func TestBox_YAMLRoundTrip(t *testing.T) {
	b := NewBox(10, 20, 30, 40)
	data, err := yaml.Marshal(b)
	require.NoError(t, err)

	var back Box
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}
