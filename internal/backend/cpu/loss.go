package cpu

import (
	"fmt"
	"math"

	"github.com/zbxzc35/RNN-Experiments/internal/tensor"
)

// CrossEntropy returns the mean softmax cross-entropy (natural log) of
// logits [N, C] against int32 targets [N] as a scalar tensor.
//
// Each row uses the log-sum-exp trick:
//
//	loss_i = log(sum_j exp(x_ij - m_i)) + m_i - x_i,target
func (cpu *CPUBackend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	requireFloat("cross_entropy", logits)
	lShape := logits.Shape()
	if len(lShape) != 2 {
		panic(fmt.Sprintf("cross_entropy: logits must be 2D [N, C], got %v", lShape))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("cross_entropy: targets must be int32, got %s", targets.DType()))
	}
	tShape := targets.Shape()
	if len(tShape) != 1 || tShape[0] != lShape[0] {
		panic(fmt.Sprintf("cross_entropy: targets shape %v does not match logits %v", tShape, lShape))
	}

	var loss float64
	if logits.DType() == tensor.Float32 {
		loss = meanNLL[float32](logits, targets.AsInt32())
	} else {
		loss = meanNLL[float64](logits, targets.AsInt32())
	}

	result := cpu.alloc("cross_entropy", tensor.Shape{}, logits.DType())
	if logits.DType() == tensor.Float32 {
		result.AsFloat32()[0] = float32(loss)
	} else {
		result.AsFloat64()[0] = loss
	}
	return result
}

func meanNLL[T tensor.Float](logits *tensor.RawTensor, targets []int32) float64 {
	data := tensor.Values[T](logits)
	n, c := logits.Shape()[0], logits.Shape()[1]

	var total float64
	for i := 0; i < n; i++ {
		row := data[i*c : (i+1)*c]
		target := int(targets[i])
		if target < 0 || target >= c {
			panic(fmt.Sprintf("cross_entropy: target %d out of range [0, %d) at row %d", target, c, i))
		}
		total += logSumExp(row) - float64(row[target])
	}
	return total / float64(n)
}

// logSumExp computes log(sum(exp(row))) stably.
func logSumExp[T tensor.Float](row []T) float64 {
	m := math.Inf(-1)
	for _, v := range row {
		m = math.Max(m, float64(v))
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - m)
	}
	return m + math.Log(sum)
}
