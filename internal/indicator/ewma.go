// Copyright (c) 2024 OBI-Scalp-Bot
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package indicator

import "math"

// EWMA tracks an exponentially weighted moving average and standard deviation
// of a series, such as model accuracy across retrains.
type EWMA struct {
	alpha         float64 // Weight of the newest value, in (0, 1]
	mean          float64
	variance      float64
	count         int
	isInitialized bool
}

// NewEWMA creates an EWMA. alpha outside (0, 1] is clamped into range.
func NewEWMA(alpha float64) *EWMA {
	if alpha <= 0 {
		alpha = math.SmallestNonzeroFloat64
	}
	if alpha > 1 {
		alpha = 1
	}
	return &EWMA{alpha: alpha}
}

// Update folds value into the average and returns the new mean and standard deviation.
// The first value seeds the mean with zero deviation.
func (e *EWMA) Update(value float64) (mean float64, stdDev float64) {
	e.count++
	if !e.isInitialized {
		e.mean = value
		e.isInitialized = true
		return e.mean, 0
	}

	// Var_t = (1-alpha) * Var_{t-1} + alpha * (x_t - Mean_{t-1})^2
	dev := value - e.mean
	e.variance = (1-e.alpha)*e.variance + e.alpha*dev*dev
	e.mean = e.alpha*value + (1-e.alpha)*e.mean

	return e.mean, e.StdDev()
}

// Mean returns the current moving average.
func (e *EWMA) Mean() float64 { return e.mean }

// StdDev returns the current moving standard deviation.
func (e *EWMA) StdDev() float64 {
	if !e.isInitialized || e.variance < 0 {
		return 0
	}
	return math.Sqrt(e.variance)
}

// Count returns the number of values seen.
func (e *EWMA) Count() int { return e.count }
