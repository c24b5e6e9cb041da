package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const DefaultBeta = 0.98

// EMA is an exponential moving average with bias correction for the first
// iterations. The zero value is not usable; call NewEMA.
type EMA struct {
	beta     float64
	count    int
	average  float64
	smoothed float64
}

func NewEMA(beta float64) *EMA {
	if !(beta > 0 && beta < 1) {
		beta = DefaultBeta
	}
	return &EMA{beta: beta}
}

// Update folds v into the average and returns average / (1 - beta^count).
func (e *EMA) Update(v float64) float64 {
	e.count++
	e.average = e.beta*e.average + (1-e.beta)*v
	// Incremental form of average/(1-beta^n); exact on the first call and
	// for constant input.
	gain := (1 - e.beta) / (1 - math.Pow(e.beta, float64(e.count)))
	e.smoothed += (v - e.smoothed) * gain
	return e.smoothed
}

// Value is the last bias-corrected estimate, 0 before any update.
func (e *EMA) Value() float64 { return e.smoothed }

// Raw is the uncorrected running average.
func (e *EMA) Raw() float64 { return e.average }

func (e *EMA) Count() int { return e.count }

func (e *EMA) Beta() float64 { return e.beta }

// Smooth runs a fresh EMA over values and returns every intermediate estimate.
func Smooth(beta float64, values []float64) []float64 {
	e := NewEMA(beta)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = e.Update(v)
	}
	return out
}

// Mean is the plain average of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}
