package nn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// Initializer produces initial values for a parameter of a given shape.
// Values are returned row-major as float64 and converted by the caller.
type Initializer interface {
	Init(shape tensor.Shape, src rand.Source) []float64
}

// Constant fills every element with Value.
type Constant struct {
	Value float64
}

// Init implements Initializer.
func (c Constant) Init(shape tensor.Shape, _ rand.Source) []float64 {
	out := make([]float64, shape.NumElements())
	for i := range out {
		out[i] = c.Value
	}
	return out
}

// String describes the initializer for logs.
func (c Constant) String() string {
	return fmt.Sprintf("Constant(%g)", c.Value)
}

// IsotropicGaussian draws every element independently from N(Mean, Std²).
type IsotropicGaussian struct {
	Mean float64
	Std  float64
}

// Init implements Initializer.
func (g IsotropicGaussian) Init(shape tensor.Shape, src rand.Source) []float64 {
	dist := distuv.Normal{Mu: g.Mean, Sigma: g.Std, Src: src}
	out := make([]float64, shape.NumElements())
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// String describes the initializer for logs.
func (g IsotropicGaussian) String() string {
	return fmt.Sprintf("IsotropicGaussian(mean=%g, std=%g)", g.Mean, g.Std)
}

// Orthogonal initializes a 2D weight with orthonormal rows or columns
// (whichever is fewer), scaled by Scale. A zero Scale means 1.
//
// A standard normal matrix is QR-factorized and Q's columns are sign
// corrected by diag(R), which makes the result uniformly distributed over
// orthogonal matrices.
type Orthogonal struct {
	Scale float64
}

// Init implements Initializer. Panics for shapes that are not 2D.
func (o Orthogonal) Init(shape tensor.Shape, src rand.Source) []float64 {
	if len(shape) != 2 {
		panic(fmt.Sprintf("orthogonal: requires a 2D shape, got %v", shape))
	}
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}

	rows, cols := shape[0], shape[1]
	tall, wide := max(rows, cols), min(rows, cols)

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	draws := make([]float64, tall*wide)
	for i := range draws {
		draws[i] = normal.Rand()
	}

	var qr mat.QR
	qr.Factorize(mat.NewDense(tall, wide, draws))
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	// Column j of the thin Q, sign corrected by R[j][j].
	basis := mat.NewDense(tall, wide, nil)
	for j := 0; j < wide; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < tall; i++ {
			basis.Set(i, j, sign*scale*q.At(i, j))
		}
	}

	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rows >= cols {
				out[i*cols+j] = basis.At(i, j)
			} else {
				out[i*cols+j] = basis.At(j, i)
			}
		}
	}
	return out
}

// String describes the initializer for logs.
func (o Orthogonal) String() string {
	return fmt.Sprintf("Orthogonal(scale=%g)", o.Scale)
}
