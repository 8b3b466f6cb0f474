package heuristics

import (
	"github.com/vaultsentry/vaultsentry/internal/geomath"
	"github.com/vaultsentry/vaultsentry/internal/threat"
)

// GeoMetrics is the output of the geographic clustering heuristic.
type GeoMetrics struct {
	RiskScore        float64 `json:"risk_score"`
	ClusterCount     int     `json:"cluster_count"`
	LocationSpreadKm float64 `json:"location_spread_km"`
	DistinctPoints   int     `json:"distinct_points"`
}

// Geographic heuristic parameters. The three contribution caps sum to 1.0.
const (
	geoClusterRadiusKm  = 1.0
	geoClusterThreshold = 5
	geoSpreadKm         = 100.0
	geoPointThreshold   = 50

	geoCapClusters = 0.3
	geoCapSpread   = 0.4
	geoCapPoints   = 0.3
)

// AnalyzeGeographic clusters access coordinates with a simple
// epsilon-radius grouping and scores risk from cluster count, spatial
// spread and the sheer number of distinct access points.
func AnalyzeGeographic(logs []threat.AccessLogEntry) GeoMetrics {
	var points []geomath.Point
	for _, e := range logs {
		if e.HasLocation() {
			points = append(points, geomath.Point{Lat: *e.Latitude, Lon: *e.Longitude})
		}
	}
	if len(points) == 0 {
		return GeoMetrics{}
	}

	clusters := clusterPoints(points, geoClusterRadiusKm)
	spread := geomath.StdDevKm(points)
	distinct := distinctPoints(points)

	risk := 0.0
	if len(clusters) > geoClusterThreshold {
		// Scale from the threshold up; ten extra clusters saturate the cap.
		over := float64(len(clusters) - geoClusterThreshold)
		risk += threat.Clamp(over/10*geoCapClusters, 0, geoCapClusters)
	}
	if spread > geoSpreadKm {
		risk += geoCapSpread
	}
	if distinct > geoPointThreshold {
		risk += geoCapPoints
	}

	return GeoMetrics{
		RiskScore:        threat.Clamp(risk, 0, 1),
		ClusterCount:     len(clusters),
		LocationSpreadKm: spread,
		DistinctPoints:   distinct,
	}
}

// distinctPoints counts unique coordinate pairs.
func distinctPoints(points []geomath.Point) int {
	seen := make(map[geomath.Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// clusterPoints performs greedy epsilon-radius grouping: each point joins
// the first existing cluster whose seed lies within radiusKm, otherwise it
// seeds a new cluster.
func clusterPoints(points []geomath.Point, radiusKm float64) [][]geomath.Point {
	var clusters [][]geomath.Point
	for _, p := range points {
		placed := false
		for i, c := range clusters {
			seed := c[0]
			if geomath.HaversineKm(p.Lat, p.Lon, seed.Lat, seed.Lon) <= radiusKm {
				clusters[i] = append(clusters[i], p)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []geomath.Point{p})
		}
	}
	return clusters
}
