package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Point represents a 2D coordinate in page space.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned bounding box in page coordinates.
// Upstream extractors serialize boxes as [left, top, right, bottom].
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from two corner coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// FromArray converts a [left, top, right, bottom] wire bbox into a Box.
func FromArray(b [4]float64) Box {
	return Box{MinX: b[0], MinY: b[1], MaxX: b[2], MaxY: b[3]}
}

// Array returns the box in [left, top, right, bottom] wire form.
func (b Box) Array() [4]float64 {
	return [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// IsZero reports whether the box is the degenerate all-zero box used as a
// placeholder for unknown positions.
func (b Box) IsZero() bool {
	return b.MinX == 0 && b.MinY == 0 && b.MaxX == 0 && b.MaxY == 0
}

// Center returns the box center point.
func (b Box) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Contains reports whether o lies entirely within b.
func (b Box) Contains(o Box) bool {
	return o.MinX >= b.MinX && o.MinY >= b.MinY && o.MaxX <= b.MaxX && o.MaxY <= b.MaxY
}

// Merge returns the smallest box containing all inputs, taking the
// component-wise min of left/top and max of right/bottom. The degenerate
// all-zero box is returned for empty input.
func Merge(boxes []Box) Box {
	if len(boxes) == 0 {
		return Box{}
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out.MinX = math.Min(out.MinX, b.MinX)
		out.MinY = math.Min(out.MinY, b.MinY)
		out.MaxX = math.Max(out.MaxX, b.MaxX)
		out.MaxY = math.Max(out.MaxY, b.MaxY)
	}
	return out
}

// Distance returns the Euclidean distance between the centers of a and b.
func Distance(a, b Box) float64 {
	ca, cb := a.Center(), b.Center()
	return math.Hypot(ca.X-cb.X, ca.Y-cb.Y)
}

// MarshalJSON encodes the box in [left, top, right, bottom] wire form.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Array())
}

// UnmarshalJSON decodes a [left, top, right, bottom] array.
func (b *Box) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 4 {
		return fmt.Errorf("bbox must have 4 components, got %d", len(arr))
	}
	*b = Box{MinX: arr[0], MinY: arr[1], MaxX: arr[2], MaxY: arr[3]}
	return nil
}

// MarshalYAML encodes the box in [left, top, right, bottom] wire form.
func (b Box) MarshalYAML() (interface{}, error) {
	return []float64{b.MinX, b.MinY, b.MaxX, b.MaxY}, nil
}

// UnmarshalYAML decodes a [left, top, right, bottom] sequence.
func (b *Box) UnmarshalYAML(value *yaml.Node) error {
	var arr []float64
	if err := value.Decode(&arr); err != nil {
		return err
	}
	if len(arr) != 4 {
		return fmt.Errorf("bbox must have 4 components, got %d", len(arr))
	}
	*b = Box{MinX: arr[0], MinY: arr[1], MaxX: arr[2], MaxY: arr[3]}
	return nil
}
