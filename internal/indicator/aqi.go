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

// Package indicator computes the US EPA Air Quality Index for PM2.5.
package indicator

import "math"

// Number of AQI categories, Good through Hazardous.
const NumCategories = 6

// breakpoint is one row of the EPA PM2.5 table (24h, µg/m³).
type breakpoint struct {
	concLow, concHigh float64
	aqiLow, aqiHigh   float64
}

// The last row covers 350.5-500.4 and is extrapolated beyond that.
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

var categoryNames = [NumCategories]string{
	"Good",
	"Moderate",
	"Unhealthy for Sensitive Groups",
	"Unhealthy",
	"Very Unhealthy",
	"Hazardous",
}

// truncatePM25 truncates a concentration to one decimal place as the EPA table expects.
func truncatePM25(pm float64) float64 {
	return math.Floor(pm*10) / 10
}

// PM25ToAQI converts a PM2.5 concentration into an AQI value by linear
// interpolation inside its breakpoint band. Negative input is treated as 0.
func PM25ToAQI(pm float64) float64 {
	c := truncatePM25(math.Max(pm, 0))
	for i, bp := range pm25Breakpoints {
		// Values in the 0.1 gaps between bands belong to the upper band.
		if c <= bp.concHigh || i == len(pm25Breakpoints)-1 {
			return math.Round((bp.aqiHigh-bp.aqiLow)/(bp.concHigh-bp.concLow)*(c-bp.concLow) + bp.aqiLow)
		}
	}
	return 0
}

// Category returns the AQI category index in [0, NumCategories) for a PM2.5
// concentration. The Hazardous band absorbs everything above 250.4.
func Category(pm float64) int {
	c := truncatePM25(math.Max(pm, 0))
	for i, bp := range pm25Breakpoints {
		if c <= bp.concHigh {
			return i
		}
	}
	return NumCategories - 1
}

// CategoryName returns the display name of a category index, or "Unknown".
func CategoryName(category int) string {
	if category < 0 || category >= NumCategories {
		return "Unknown"
	}
	return categoryNames[category]
}
