package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

func TestConstant_Init(t *testing.T) {
	values := Constant{Value: 0.5}.Init(tensor.Shape{2, 3}, rand.NewSource(1))
	require.Len(t, values, 6)
	for _, v := range values {
		assert.Equal(t, 0.5, v)
	}
}

func TestIsotropicGaussian_Moments(t *testing.T) {
	values := IsotropicGaussian{Std: 0.1}.Init(tensor.Shape{200, 100}, rand.NewSource(7))

	var sum, sq float64
	for _, v := range values {
		sum += v
		sq += v * v
	}
	n := float64(len(values))
	mean := sum / n
	std := math.Sqrt(sq/n - mean*mean)

	assert.InDelta(t, 0, mean, 0.005)
	assert.InDelta(t, 0.1, std, 0.005)
}

func TestIsotropicGaussian_Reproducible(t *testing.T) {
	g := IsotropicGaussian{Std: 0.1}
	a := g.Init(tensor.Shape{4, 4}, rand.NewSource(42))
	b := g.Init(tensor.Shape{4, 4}, rand.NewSource(42))
	c := g.Init(tensor.Shape{4, 4}, rand.NewSource(43))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestOrthogonal_Square(t *testing.T) {
	values := Orthogonal{}.Init(tensor.Shape{5, 5}, rand.NewSource(3))
	w := mat.NewDense(5, 5, values)

	var gram mat.Dense
	gram.Mul(w.T(), w)
	assert.True(t, mat.EqualApprox(&gram, identity(5), 1e-10), "WᵀW should be the identity")
}

func TestOrthogonal_Rectangular(t *testing.T) {
	// Tall: orthonormal columns.
	tall := mat.NewDense(6, 3, Orthogonal{}.Init(tensor.Shape{6, 3}, rand.NewSource(5)))
	var colGram mat.Dense
	colGram.Mul(tall.T(), tall)
	assert.True(t, mat.EqualApprox(&colGram, identity(3), 1e-10))

	// Wide: orthonormal rows.
	wide := mat.NewDense(3, 6, Orthogonal{}.Init(tensor.Shape{3, 6}, rand.NewSource(5)))
	var rowGram mat.Dense
	rowGram.Mul(wide, wide.T())
	assert.True(t, mat.EqualApprox(&rowGram, identity(3), 1e-10))
}

func TestOrthogonal_Scale(t *testing.T) {
	values := Orthogonal{Scale: 2}.Init(tensor.Shape{4, 4}, rand.NewSource(9))
	w := mat.NewDense(4, 4, values)

	var gram mat.Dense
	gram.Mul(w.T(), w)
	want := identity(4)
	want.Scale(4, want)
	assert.True(t, mat.EqualApprox(&gram, want, 1e-10))
}

func TestOrthogonal_Rejects1D(t *testing.T) {
	assert.Panics(t, func() {
		Orthogonal{}.Init(tensor.Shape{4}, rand.NewSource(1))
	})
}

func identity(n int) *mat.Dense {
	id := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return id
}
