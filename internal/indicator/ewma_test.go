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

import (
	"math"
	"testing"
)

const float64EqualityThreshold = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func TestEWMA_Update(t *testing.T) {
	tests := []struct {
		name            string
		alpha           float64
		values          []float64
		expectedMeans   []float64
		expectedStdDevs []float64
	}{
		{
			name:            "Stable series",
			alpha:           0.1,
			values:          []float64{0.8, 0.8, 0.8},
			expectedMeans:   []float64{0.8, 0.8, 0.8},
			expectedStdDevs: []float64{0, 0, 0},
		},
		{
			name:   "Step change",
			alpha:  0.5,
			values: []float64{0.8, 0.6, 0.6},
			// Mean: 0.8 | 0.5*0.6+0.5*0.8=0.7 | 0.5*0.6+0.5*0.7=0.65
			// Var:  0   | 0.5*0+0.5*(0.6-0.8)^2=0.02 | 0.5*0.02+0.5*(0.6-0.7)^2=0.015
			expectedMeans:   []float64{0.8, 0.7, 0.65},
			expectedStdDevs: []float64{0, math.Sqrt(0.02), math.Sqrt(0.015)},
		},
		{
			name:            "Alpha one follows the last value",
			alpha:           1,
			values:          []float64{0.2, 0.9},
			expectedMeans:   []float64{0.2, 0.9},
			expectedStdDevs: []float64{0, 0.7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEWMA(tt.alpha)
			for i, v := range tt.values {
				mean, std := e.Update(v)
				if !almostEqual(mean, tt.expectedMeans[i]) {
					t.Errorf("step %d: mean = %v, want %v", i, mean, tt.expectedMeans[i])
				}
				if !almostEqual(std, tt.expectedStdDevs[i]) {
					t.Errorf("step %d: stddev = %v, want %v", i, std, tt.expectedStdDevs[i])
				}
			}
			if e.Count() != len(tt.values) {
				t.Errorf("Count() = %d, want %d", e.Count(), len(tt.values))
			}
		})
	}
}

func TestEWMA_Uninitialized(t *testing.T) {
	e := NewEWMA(0.3)
	if e.Mean() != 0 || e.StdDev() != 0 || e.Count() != 0 {
		t.Errorf("expected zero state, got mean=%v std=%v count=%d", e.Mean(), e.StdDev(), e.Count())
	}
}

func TestNewEWMA_ClampsAlpha(t *testing.T) {
	e := NewEWMA(5)
	e.Update(1)
	if mean, _ := e.Update(3); !almostEqual(mean, 3) {
		t.Errorf("alpha above one should clamp to 1, mean = %v", mean)
	}

	e = NewEWMA(-1)
	e.Update(1)
	if mean, _ := e.Update(3); !almostEqual(mean, 1) {
		t.Errorf("non-positive alpha should keep the seed value, mean = %v", mean)
	}
}
