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
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON interchange. Input is a feature collection whose LineString
// features are chains of lines: every pair of consecutive coordinates is one
// line. Feature properties, all optional:
//
//	line     - id of the first line of the chain (next ones count up from it)
//	side     - id of the first line side
//	front    - which side of a one-sided line exists, default true
//	twoSided - both sides exist
//
// Polygon features are also accepted as one-sided rooms: the outer ring bounds
// the room from outside and holes are pillars, whatever the winding in file.

// ReadGeoJSON reads line sides from a GeoJSON feature collection
func ReadGeoJSON(r io.Reader) ([]LineSide, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}
	rd := geoReader{}
	for i, f := range fc.Features {
		var err error
		switch g := f.Geometry.(type) {
		case orb.LineString:
			err = rd.chain(f.Properties, g)
		case orb.MultiLineString:
			for _, ls := range g {
				if err = rd.chain(f.Properties, ls); err != nil {
					break
				}
			}
		case orb.Polygon:
			err = rd.polygon(g)
		case orb.MultiPolygon:
			for _, poly := range g {
				if err = rd.polygon(poly); err != nil {
					break
				}
			}
		default:
			err = fmt.Errorf("unsupported geometry %s", f.Geometry.GeoJSONType())
		}
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return rd.sides, nil
}

// intProp returns an integral number property. ok is false if it is absent
func intProp(props geojson.Properties, key string) (v int, ok bool, err error) {
	raw, ok := props[key]
	if !ok {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, true, fmt.Errorf("property %q is not an integer: %v", key, n)
		}
		return int(n), true, nil
	case int:
		return n, true, nil
	}
	return 0, true, fmt.Errorf("property %q is %T, not a number", key, raw)
}

func boolProp(props geojson.Properties, key string, def bool) (bool, error) {
	raw, ok := props[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("property %q is %T, not a boolean", key, raw)
	}
	return b, nil
}

type geoReader struct {
	sides    []LineSide
	nextLine int
	nextSide int
}

func (rd *geoReader) chain(props geojson.Properties, ls orb.LineString) error {
	line, ok, err := intProp(props, "line")
	if err != nil {
		return err
	}
	if ok {
		rd.nextLine = line
	}
	side, ok, err := intProp(props, "side")
	if err != nil {
		return err
	}
	if ok {
		rd.nextSide = side
	}
	front, err := boolProp(props, "front", true)
	if err != nil {
		return err
	}
	twoSided, err := boolProp(props, "twoSided", false)
	if err != nil {
		return err
	}
	for k := 0; k+1 < len(ls); k++ {
		start := Point{ls[k][0], ls[k][1]}
		end := Point{ls[k+1][0], ls[k+1][1]}
		if twoSided || front {
			rd.sides = append(rd.sides, LineSide{Start: start, End: end,
				LineID: rd.nextLine, SideID: rd.nextSide, Front: true})
			rd.nextSide++
		}
		if twoSided || !front {
			rd.sides = append(rd.sides, LineSide{Start: start, End: end,
				LineID: rd.nextLine, SideID: rd.nextSide, Front: false})
			rd.nextSide++
		}
		rd.nextLine++
	}
	return nil
}

// polygon winds the outer ring clockwise and holes counter-clockwise, so that
// the room interior is on the right of every line
func (rd *geoReader) polygon(poly orb.Polygon) error {
	for i, ring := range poly {
		want := orb.CW
		if i > 0 {
			want = orb.CCW
		}
		r := ring.Clone()
		if r.Orientation() != want {
			r.Reverse()
		}
		if !r.Closed() && len(r) > 0 {
			r = append(r, r[0])
		}
		if err := rd.chain(nil, orb.LineString(r)); err != nil {
			return err
		}
	}
	return nil
}

// FeatureCollection exports leaves as polygons and splitters as line strings
func (t *Tree) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range t.Nodes {
		n := &t.Nodes[i]
		switch n.Kind {
		case NodeLeaf:
			f := geojson.NewFeature(orb.Polygon{n.Ring()})
			f.Properties["kind"] = "leaf"
			f.Properties["node"] = i
			f.Properties["path"] = n.Path
			f.Properties["edges"] = len(n.Edges)
			minisegs := 0
			for _, e := range n.Edges {
				if e.IsMiniseg() {
					minisegs++
				}
			}
			f.Properties["minisegs"] = minisegs
			fc.Append(f)
		case NodeParent:
			f := geojson.NewFeature(orb.LineString{n.Line.Start.Orb(), n.Line.End.Orb()})
			f.Properties["kind"] = "splitter"
			f.Properties["node"] = i
			f.Properties["path"] = n.Path
			fc.Append(f)
		}
	}
	return fc
}

func WriteGeoJSON(w io.Writer, t *Tree) error {
	data, err := t.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}
	return nil
}
