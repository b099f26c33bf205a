// Copyright (C) 2025, VigilantDoomer
//
// This file is part of MapBSP program.
//
// MapBSP is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// MapBSP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with MapBSP.  If not, see <https://www.gnu.org/licenses/>.
package mapbsp

import (
	"fmt"
	"math"
	"runtime"
)

const VERSION = "0.1"

// Defaults
const (
	DefaultVertexWeldingEpsilon       = 1.0 / 8192.0
	DefaultPunishableEndpointDistance = 0.25
	DefaultMaxDepth                   = 1024
)

// SplitWeights are coefficients of splitter scoring. Lower score wins. The
// exact values are policy: they steer tree balance and seg count, correctness
// doesn't depend on them
type SplitWeights struct {
	Imbalance      int64 // per unit of |front - back|
	NotAxisAligned int64 // diagonal splitter
	NearEndpoint   int64 // per cut landing close to, but not at, an endpoint
	ScoreFactor    int64 // multiplier of the sum
	Split          int64 // per segment that would be split
}

// Config holds tunables of one compile. The builder works on its own copy,
// so changing Config after compile started has no effect
type Config struct {
	VertexWeldingEpsilon       float64
	PunishableEndpointDistance float64
	SplitWeights               SplitWeights
	MaxDepth                   int  // branches deeper than this are degenerate
	Workers                    int  // goroutines for splitter scoring, 0 = GOMAXPROCS
	PruneDanglingChains        bool // cut away one-sided lines leading nowhere before building
	Logger                     *Logger
}

func DefaultSplitWeights() SplitWeights {
	return SplitWeights{
		Imbalance:      1,
		NotAxisAligned: 5,
		NearEndpoint:   100,
		ScoreFactor:    1,
		Split:          8,
	}
}

func DefaultConfig() *Config {
	return &Config{
		VertexWeldingEpsilon:       DefaultVertexWeldingEpsilon,
		PunishableEndpointDistance: DefaultPunishableEndpointDistance,
		SplitWeights:               DefaultSplitWeights(),
		MaxDepth:                   DefaultMaxDepth,
	}
}

func (c *Config) Validate() error {
	if !(c.VertexWeldingEpsilon > 0) || math.IsInf(c.VertexWeldingEpsilon, 0) {
		return fmt.Errorf("vertex welding epsilon must be positive, got %v",
			c.VertexWeldingEpsilon)
	}
	if c.PunishableEndpointDistance < 0 || math.IsNaN(c.PunishableEndpointDistance) {
		return fmt.Errorf("punishable endpoint distance must not be negative, got %v",
			c.PunishableEndpointDistance)
	}
	w := c.SplitWeights
	if w.Imbalance < 0 || w.NotAxisAligned < 0 || w.NearEndpoint < 0 || w.Split < 0 {
		return fmt.Errorf("split weights must not be negative: %+v", w)
	}
	if w.ScoreFactor <= 0 {
		return fmt.Errorf("score factor must be positive, got %d", w.ScoreFactor)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c *Config) workerCount() int {
	if c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
