package handlers

import (
	"bytes"
	"encoding/csv"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"merkez/api/geo"
)

func newSiteRouter() *gin.Engine {
	r := gin.New()
	r.GET("/reports/verification", VerificationReport)
	r.GET("/reports/academic", AcademicReport)
	r.GET("/center", CenterInfo)
	r.GET("/center/extremes", CenterExtremes)
	r.GET("/center.geojson", CenterGeoJSON)
	r.GET("/center.csv", CenterCSV)
	r.GET("/i18n/:lang", Dictionary)
	r.GET("/healthz", HealthCheck)
	return r
}

func get(r http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReportHeaders(t *testing.T) {
	r := newSiteRouter()

	tests := []struct {
		target   string
		header   map[string]string
		filename string
	}{
		{"/reports/verification?lang=en", nil, "Turkey_Geographic_Center_Verification_Report.pdf"},
		{"/reports/verification", nil, "Türkiye_Tam_Ortası_Doğrulama_Raporu.pdf"},
		{"/reports/verification", map[string]string{"Accept-Language": "en-US"}, "Turkey_Geographic_Center_Verification_Report.pdf"},
		{"/reports/academic?lang=tr", map[string]string{"Accept-Language": "en"}, "Turkiye_Ortasi_Akademik_Calisma_TR.pdf"},
		{"/reports/academic?lang=en", nil, "Turkey_Geographic_Center_Academic_Study_EN.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(r, tt.target, tt.header)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("Content-Type = %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-cache, no-store, must-revalidate" {
				t.Errorf("Cache-Control = %q", cc)
			}
			disp, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
			if err != nil {
				t.Fatal(err)
			}
			if disp != "attachment" || params["filename"] != tt.filename {
				t.Errorf("disposition = %q %v", disp, params)
			}
			if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-1.4")) {
				t.Error("body is not a PDF")
			}
		})
	}
}

func TestCenterInfoHandler(t *testing.T) {
	w := get(newSiteRouter(), "/center?lang=en", nil)
	var info geo.CenterInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Latitude != geo.CenterLat || info.Name != "Turkey's Geographic Center" {
		t.Errorf("info = %+v", info)
	}
}

func TestCenterExtremesHandler(t *testing.T) {
	w := get(newSiteRouter(), "/center/extremes", nil)
	var body struct {
		Points    []geo.ExtremePoint `json:"points"`
		Distances map[string]float64 `json:"distances_km"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Points) != 4 || body.Points[0].Name != "En Kuzey Nokta" {
		t.Errorf("points = %+v", body.Points)
	}
	if body.Points[0].DistanceKm != 229.8 || body.Distances["west"] != 807.86 {
		t.Errorf("distances = %v, north point %+v", body.Distances, body.Points[0])
	}
}

func TestCenterExports(t *testing.T) {
	r := newSiteRouter()

	w := get(r, "/center.geojson", nil)
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("geojson Content-Type = %q", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"FeatureCollection"`)) {
		t.Errorf("geojson body = %s", w.Body.String())
	}

	w = get(r, "/center.csv", nil)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("csv Content-Type = %q", ct)
	}
	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "name_tr" {
		t.Errorf("rows = %q", rows)
	}
}

func TestDictionaryHandler(t *testing.T) {
	r := newSiteRouter()

	tests := []struct {
		target string
		accept string
		want   string
	}{
		{"/i18n/en", "", "en"},
		{"/i18n/tr", "en", "tr"},
		{"/i18n/de", "", "tr"},
		{"/i18n/xx", "en-GB", "en"},
	}
	for _, tt := range tests {
		w := get(r, tt.target, map[string]string{"Accept-Language": tt.accept})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.target, w.Code)
		}
		if got := w.Header().Get("Content-Language"); got != tt.want {
			t.Errorf("%s: Content-Language = %q, want %q", tt.target, got, tt.want)
		}
		var dict map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &dict); err != nil {
			t.Errorf("%s: %v", tt.target, err)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	w := get(newSiteRouter(), "/healthz", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}
