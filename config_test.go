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
	"testing"

	"github.com/tdewolff/test"
)

func TestConfigValidate(t *testing.T) {
	test.Error(t, DefaultConfig().Validate())
	for _, tt := range []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero epsilon", func(c *Config) { c.VertexWeldingEpsilon = 0 }},
		{"negative endpoint distance", func(c *Config) { c.PunishableEndpointDistance = -1 }},
		{"negative weight", func(c *Config) { c.SplitWeights.Imbalance = -1 }},
		{"zero score factor", func(c *Config) { c.SplitWeights.ScoreFactor = 0 }},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			test.That(t, c.Validate() != nil, "accepted")
		})
	}
}

func TestConfigWorkers(t *testing.T) {
	c := DefaultConfig()
	test.That(t, c.workerCount() >= 1)
	c.Workers = 3
	test.T(t, c.workerCount(), 3)
	test.T(t, DefaultSplitWeights(), SplitWeights{Imbalance: 1, NotAxisAligned: 5,
		NearEndpoint: 100, ScoreFactor: 1, Split: 8})
}
