// Package geo holds the published geographic center of Türkiye and its
// export formats. The coordinates are fixed survey results, not computed.
package geo

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

const (
	CenterLat = 39.245472
	CenterLon = 35.487361

	Location         = "Eşrefpaşa/Çandır, Yozgat"
	CoordinateSystem = "WGS84 (EPSG:4326)"
	Projection       = "Lambert Azimuthal Equal-Area (LAEA)"

	NameTR = "Türkiye'nin Tam Ortası"
	NameEN = "Turkey's Geographic Center"
)

// CenterInfo is the localized description of the center point.
type CenterInfo struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Location         string  `json:"location"`
	CoordinateSystem string  `json:"coordinate_system"`
	Projection       string  `json:"projection"`
	Method           string  `json:"method"`
	LastUpdated      string  `json:"last_updated"`
}

func Info(lang string) CenterInfo {
	info := CenterInfo{
		Latitude:         CenterLat,
		Longitude:        CenterLon,
		Location:         Location,
		CoordinateSystem: CoordinateSystem,
		Projection:       Projection,
	}
	if lang == "en" {
		info.Name = "Turkey's Geographic Center"
		info.Description = "Geometric center point calculated using area-weighted centroid method"
		info.Method = "Area-Weighted Centroid"
		info.LastUpdated = "December 9, 2025"
		return info
	}
	info.Name = "Türkiye'nin Coğrafi Merkezi"
	info.Description = "Alan-ağırlıklı centroid yöntemi kullanılarak hesaplanan geometrik merkez noktası"
	info.Method = "Alan-Ağırlıklı Centroid"
	info.LastUpdated = "9 Aralık 2025"
	return info
}

// ExtremePoint is one of the four extreme land points of the country.
type ExtremePoint struct {
	Direction   string  `json:"direction"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	DistanceKm  float64 `json:"distance_km"`
}

type extreme struct {
	direction      string
	nameTR, nameEN string
	location       string
	lat, lon       float64
	descTR, descEN string
}

var extremes = []extreme{
	{"north", "En Kuzey Nokta", "Northernmost Point", "Giresun / Rize", 41.295278, 35.832500,
		"Türkiye'nin Karadeniz'de en kuzey noktası", "Turkey's northernmost point in the Black Sea"},
	{"south", "En Güney Nokta", "Southernmost Point", "Topraktutan / Hatay", 35.812778, 36.155556,
		"Türkiye'nin en güney kara noktası", "Turkey's southernmost land point"},
	{"east", "En Doğu Nokta", "Easternmost Point", "Dilucu / Iğdır", 39.651667, 44.817778,
		"Türkiye'nin en doğu noktası", "Turkey's easternmost point"},
	{"west", "En Batı Nokta", "Westernmost Point", "İpsala / Edirne", 40.070833, 26.106944,
		"Türkiye'nin en batı noktası", "Turkey's westernmost point"},
}

// Extremes returns the extreme points in north, south, east, west order.
func Extremes(lang string) []ExtremePoint {
	out := make([]ExtremePoint, 0, len(extremes))
	for _, e := range extremes {
		p := ExtremePoint{
			Direction:  e.direction,
			Location:   e.location,
			Latitude:   e.lat,
			Longitude:  e.lon,
			DistanceKm: roundKm(DistanceKm(CenterLat, CenterLon, e.lat, e.lon)),
		}
		if lang == "en" {
			p.Name, p.Description = e.nameEN, e.descEN
		} else {
			p.Name, p.Description = e.nameTR, e.descTR
		}
		out = append(out, p)
	}
	return out
}

// earthRadiusKm is the mean radius the published distances were computed with.
const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance in km on a sphere of
// radius earthRadiusKm.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	m := orbgeo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
	return m / orb.EarthRadius * earthRadiusKm
}

// DistancesFromCenter maps each direction to its extreme point's distance
// from the center in km, rounded to 2 decimals.
func DistancesFromCenter() map[string]float64 {
	out := make(map[string]float64, len(extremes))
	for _, e := range extremes {
		out[e.direction] = roundKm(DistanceKm(CenterLat, CenterLon, e.lat, e.lon))
	}
	return out
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// FeatureCollection returns the center as a GeoJSON Point feature.
func FeatureCollection() *geojson.FeatureCollection {
	f := geojson.NewFeature(orb.Point{CenterLon, CenterLat})
	f.Properties["name_tr"] = NameTR
	f.Properties["name_en"] = NameEN
	f.Properties["location"] = Location
	f.Properties["coordinate_system"] = "WGS84"
	f.Properties["method"] = "Area-Weighted Centroid"

	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{"name": NameTR + " / " + NameEN}
	fc.Append(f)
	return fc
}

var csvHeader = []string{"name_tr", "name_en", "location", "latitude", "longitude", "accuracy_km", "coordinate_system"}

// WriteCSV writes the header row and the center row.
func WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	row := []string{
		NameTR,
		NameEN,
		Location,
		strconv.FormatFloat(CenterLat, 'f', -1, 64),
		strconv.FormatFloat(CenterLon, 'f', -1, 64),
		"0",
		"WGS84",
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
