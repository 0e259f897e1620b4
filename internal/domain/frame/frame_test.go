package frame_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/brailleforge/brailleforge/internal/domain/frame"
)

func TestFlat_Identity(t *testing.T) {
	t.Parallel()

	f := frame.Flat{Thickness: 2.0}
	a := f.At(12.6, 44.4)

	// Local origin lands on the top surface; axes are untouched.
	assert.Equal(t, r3.Vec{X: 12.6, Y: 44.4, Z: 2.0}, a.Apply(r3.Vec{}))
	assert.Equal(t, r3.Vec{X: 13.6, Y: 44.4, Z: 2.0}, a.Apply(r3.Vec{X: 1}))
	assert.Equal(t, r3.Vec{X: 12.6, Y: 44.4, Z: 3.0}, a.Apply(r3.Vec{Z: 1}))
	assert.InDelta(t, 1.0, a.Det(), 1e-12)
}

func TestCylinder_IdentityAtSeam(t *testing.T) {
	t.Parallel()

	c := frame.Cylinder{Radius: 15.0}
	a := c.At(0, 7.5)

	// θ = 0, φ = 0: anchor at (R, 0, y), local +z along world +x.
	origin := a.Apply(r3.Vec{})
	assert.InDelta(t, 15.0, origin.X, 1e-12)
	assert.InDelta(t, 0.0, origin.Y, 1e-12)
	assert.InDelta(t, 7.5, origin.Z, 1e-12)

	up := r3.Sub(a.Apply(r3.Vec{Z: 1}), origin)
	assert.InDelta(t, 1.0, up.X, 1e-12)
	assert.InDelta(t, 0.0, up.Y, 1e-12)
	assert.InDelta(t, 0.0, up.Z, 1e-12)
}

func TestCylinder_QuarterTurn(t *testing.T) {
	t.Parallel()

	const r = 10.0
	c := frame.Cylinder{Radius: r}
	// Arc length for a quarter turn is πR/2.
	a := c.At(math.Pi*r/2, 3.0)

	origin := a.Apply(r3.Vec{})
	assert.InDelta(t, 0.0, origin.X, 1e-9)
	assert.InDelta(t, r, origin.Y, 1e-9)
	assert.InDelta(t, 3.0, origin.Z, 1e-9)

	// Local +z now points along world +y; local +x (tangent) along −x.
	up := r3.Sub(a.Apply(r3.Vec{Z: 1}), origin)
	assert.InDelta(t, 1.0, up.Y, 1e-9)
	tangent := r3.Sub(a.Apply(r3.Vec{X: 1}), origin)
	assert.InDelta(t, -1.0, tangent.X, 1e-9)
}

func TestCylinder_SeamOffsetRotatesContent(t *testing.T) {
	t.Parallel()

	c := frame.Cylinder{Radius: 10.0, SeamOffset: math.Pi}
	origin := c.At(0, 0).Apply(r3.Vec{})
	assert.InDelta(t, -10.0, origin.X, 1e-9)
	assert.InDelta(t, 0.0, origin.Y, 1e-9)
}

func TestCylinder_PreservesOrientation(t *testing.T) {
	t.Parallel()

	c := frame.Cylinder{Radius: 5.0}
	// [t̂ | ẑ | r̂] is a proper rotation: determinant +1 at any angle.
	for _, x := range []float64{0, 1, 7.3, 31.4} {
		assert.InDelta(t, 1.0, c.At(x, 0).Det(), 1e-12, "x=%v", x)
	}
}
