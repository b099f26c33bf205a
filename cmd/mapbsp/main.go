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
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tdewolff/argp"
	"github.com/vigilantdoomer/mapbsp"
	"gonum.org/v1/plot/vg"
)

type Compile struct {
	Output    string  `short:"o" desc:"Output GeoJSON file with leaves and splitters"`
	Plot      string  `short:"p" desc:"Output image of the tree (png, svg, pdf)"`
	Epsilon   float64 `name:"epsilon" default:"0.0001220703125" desc:"Vertex welding epsilon"`
	Endpoint  float64 `name:"endpoint" default:"0.25" desc:"Cuts closer than this to an endpoint are punished"`
	Imbalance int64   `name:"imbalance" default:"1" desc:"Splitter cost per unit of imbalance"`
	Diagonal  int64   `name:"diagonal" default:"5" desc:"Splitter cost of not being axis-aligned"`
	Near      int64   `name:"near" default:"100" desc:"Splitter cost per cut near an endpoint"`
	Factor    int64   `name:"factor" default:"1" desc:"Splitter cost multiplier"`
	Split     int64   `name:"split" default:"8" desc:"Splitter cost per split seg"`
	Workers   int     `name:"workers" default:"0" desc:"Goroutines scoring splitters, 0 for all CPUs"`
	MaxDepth  int     `name:"max-depth" default:"1024" desc:"Maximum tree depth"`
	Prune     bool    `name:"prune" desc:"Cut away dangling one-sided lines"`
	Timeout   string  `name:"timeout" default:"0s" desc:"Give up after this long, 0 for never"`
	Check     bool    `name:"check" desc:"Validate the tree after building"`
	Verbose   int     `short:"v" default:"0" desc:"Verbosity level"`
	DumpSegs  string  `name:"dump-segs" desc:"Write segments of failed branches to this file"`
	Input     string  `index:"0" desc:"Input GeoJSON file"`
}

func main() {
	cmd := argp.NewCmd(&Compile{}, fmt.Sprintf("MapBSP %s - BSP compiler for 2D maps", mapbsp.VERSION))
	cmd.Parse()
	cmd.PrintHelp()
}

func (cmd *Compile) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}
	timeStart := time.Now()
	log := mapbsp.NewLogger(os.Stdout, os.Stderr, cmd.Verbose)
	log.Printf("MapBSP %s\n", mapbsp.VERSION)

	timeout, err := time.ParseDuration(cmd.Timeout)
	if err != nil {
		return fmt.Errorf("bad timeout: %w", err)
	}

	f, err := os.Open(cmd.Input)
	if err != nil {
		return err
	}
	sides, err := mapbsp.ReadGeoJSON(f)
	f.Close()
	if err != nil {
		return err
	}
	log.Printf("Loaded %d line sides from %s\n", len(sides), cmd.Input)

	cfg := mapbsp.DefaultConfig()
	cfg.VertexWeldingEpsilon = cmd.Epsilon
	cfg.PunishableEndpointDistance = cmd.Endpoint
	cfg.SplitWeights = mapbsp.SplitWeights{
		Imbalance:      cmd.Imbalance,
		NotAxisAligned: cmd.Diagonal,
		NearEndpoint:   cmd.Near,
		ScoreFactor:    cmd.Factor,
		Split:          cmd.Split,
	}
	cfg.Workers = cmd.Workers
	cfg.MaxDepth = cmd.MaxDepth
	cfg.PruneDanglingChains = cmd.Prune
	cfg.Logger = log
	log.SetDumpSegs(cmd.DumpSegs != "")

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	tree, err := mapbsp.Compile(ctx, sides, cfg)
	if cmd.DumpSegs != "" {
		if err := saveDumpedSegs(log, cmd.DumpSegs); err != nil {
			return err
		}
	}
	if err != nil {
		var cerr *mapbsp.CompileError
		if errors.As(err, &cerr) {
			for _, fail := range cerr.Failures {
				log.Error("  %s\n", fail.Error())
			}
		}
		return err
	}
	for _, fail := range tree.Failures {
		log.Error("Warning: %s\n", fail.Error())
	}
	log.Printf("Tree: %s\n", tree)

	if cmd.Check {
		if err := tree.Validate(cfg.VertexWeldingEpsilon); err != nil {
			log.Error("Validation failed:\n%s\n", err.Error())
			return err
		}
		log.Printf("Validation passed\n")
	}
	if cmd.Output != "" {
		fw, err := os.Create(cmd.Output)
		if err != nil {
			return err
		}
		if err := mapbsp.WriteGeoJSON(fw, tree); err != nil {
			fw.Close()
			return err
		}
		if err := fw.Close(); err != nil {
			return err
		}
		log.Printf("%s successfully written\n", cmd.Output)
	}
	if cmd.Plot != "" {
		if err := tree.SavePlot(cmd.Plot, 8*vg.Inch, 8*vg.Inch); err != nil {
			return err
		}
		log.Printf("%s successfully written\n", cmd.Plot)
	}
	log.Printf("Total time: %s\n", time.Since(timeStart))
	return nil
}

func saveDumpedSegs(log *mapbsp.Logger, where string) error {
	fout, err := os.OpenFile(where, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating seg dump: %w", err)
	}
	defer fout.Close()
	n, err := fout.WriteString(log.GetDumpedSegs())
	if err != nil {
		return fmt.Errorf("writing seg dump: %w", err)
	}
	log.Printf("Wrote seg dump (%d bytes) to '%s'.\n", n, where)
	return nil
}
