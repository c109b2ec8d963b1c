package hexgrid

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// LoadZones parses a GeoJSON FeatureCollection and returns its Polygon and
// MultiPolygon geometries as blocked zones. Other geometry types are ignored.
func LoadZones(data []byte) ([]orb.Polygon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("hexgrid: load zones: %w", err)
	}

	var zones []orb.Polygon
	for _, feature := range fc.Features {
		switch geom := feature.Geometry.(type) {
		case orb.Polygon:
			if len(geom) > 0 {
				zones = append(zones, geom)
			}
		case orb.MultiPolygon:
			for _, poly := range geom {
				if len(poly) > 0 {
					zones = append(zones, poly)
				}
			}
		}
	}
	return zones, nil
}

// ApplyZones marks every cell whose center lies inside one of the zones as
// unwalkable and returns the nodes that changed.
func ApplyZones(si *SpatialIndex, zones []orb.Polygon) []*Node {
	var blocked []*Node
	for _, zone := range zones {
		for _, n := range si.QueryRegion(zone.Bound()) {
			if !n.Walkable() {
				continue
			}
			center := si.Center(n)
			if planar.PolygonContains(zone, center) {
				n.SetWalkable(false)
				blocked = append(blocked, n)
			}
		}
	}
	return blocked
}
