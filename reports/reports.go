// Package reports builds the downloadable fixed-text PDF documents about the
// geographic center.
package reports

import (
	"fmt"

	"merkez/api/geo"
	"merkez/api/i18n"
	"merkez/api/pdf"
)

const (
	leftMargin = 50
	topY       = 750
	// wrapWidth is the characters per line of 11pt body text on a Letter page.
	wrapWidth = 90
)

// Report is a rendered document and the filename offered for download.
type Report struct {
	Filename string
	Doc      *pdf.Document
}

// writer places lines top-down from topY.
type writer struct {
	doc *pdf.Document
	y   float64
}

func newWriter() *writer {
	return &writer{doc: pdf.New(), y: topY}
}

// line writes text at the current position, then moves down by advance.
func (w *writer) line(size float64, bold bool, text string, advance float64) {
	w.doc.Add(leftMargin, w.y, size, bold, text)
	w.y -= advance
}

func (w *writer) paragraph(size float64, text string, lineGap, after float64) {
	lines := pdf.Wrap(text, wrapWidth)
	for i, l := range lines {
		adv := lineGap
		if i == len(lines)-1 {
			adv = after
		}
		w.line(size, false, l, adv)
	}
}

func (w *writer) skip(dy float64) {
	w.y -= dy
}

// reportLang maps any code other than "en" to the Turkish documents.
func reportLang(lang string) string {
	if lang == "en" {
		return "en"
	}
	return i18n.DefaultLanguage
}

// label returns the site dictionary text for key, or key when it is missing.
func label(lang, key string) string {
	if v, ok := i18n.Lookup(lang, key); ok {
		return v
	}
	return key
}

func coordinates() string {
	return fmt.Sprintf("%.6f° N, %.6f° E", geo.CenterLat, geo.CenterLon)
}

type verificationText struct {
	filename, coords, location string
	methodologyText            string
	verificationText           string
	lastUpdate                 string
}

var verificationTexts = map[string]verificationText{
	"tr": {
		filename:         "Türkiye_Tam_Ortası_Doğrulama_Raporu.pdf",
		coords:           "Koordinatlar: " + coordinates(),
		location:         "Konum: " + geo.Location,
		methodologyText:  "Bu çalışmada Türkiye sınırlarının geometrik merkezi (alan-ağırlıklı centroid) hesaplanmıştır. Hesaplama Lambert Azimuthal Equal-Area projeksiyonu kullanılarak yapılmış olup, WGS84 koordinat sisteminde doğrulanmıştır.",
		verificationText: "Veriler bilimsel olarak işlenmiş ve doğrulanmıştır.",
		lastUpdate:       "Son Güncelleme: 9 Aralık 2025",
	},
	"en": {
		filename:         "Turkey_Geographic_Center_Verification_Report.pdf",
		coords:           "Coordinates: " + coordinates(),
		location:         "Location: " + geo.Location,
		methodologyText:  "This study calculated the geometric center (area-weighted centroid) of Turkey's borders. The calculation was performed using the Lambert Azimuthal Equal-Area projection and verified in the WGS84 coordinate system.",
		verificationText: "Data has been scientifically processed and verified.",
		lastUpdate:       "Last Update: December 9, 2025",
	},
}

// Verification returns the one-page verification report. Any lang other
// than "en" yields the Turkish document. Headings come from the site
// dictionaries so the PDF and the page use the same wording.
func Verification(lang string) Report {
	lang = reportLang(lang)
	t := verificationTexts[lang]

	w := newWriter()
	w.line(24, true, label(lang, "reports.verification_title"), 40)
	w.line(12, false, t.coords, 20)
	w.line(12, false, t.location, 40)
	w.line(14, true, label(lang, "methodology.title")+":", 20)
	w.paragraph(11, t.methodologyText, 15, 40)
	w.line(14, true, label(lang, "reports.verification_heading")+":", 20)
	w.paragraph(11, t.verificationText, 15, 60)
	w.line(11, false, t.lastUpdate, 0)

	return Report{Filename: t.filename, Doc: w.doc}
}

type section struct {
	heading string
	lines   []string
}

type academicText struct {
	filename, date string
	sections       []section
	footer         []string
}

var academicTexts = map[string]academicText{
	"tr": {
		filename: "Turkiye_Ortasi_Akademik_Calisma_TR.pdf",
		date:     "9 Aralık 2025",
		sections: []section{
			{"Giriş", []string{
				"Bu akademik çalışma, Türkiye'nin coğrafi merkezini tespit etme",
				"yöntemini ve harita analizi tekniklerini açıklamaktadır.",
			}},
			{"Amaç", []string{
				"Coğrafi Merkez Tespiti: Alan-Ağırlıklı Centroid yöntemi",
				"Metodoloji: Harita Analizi ve Matematik Hesaplamalar",
				"Doğruluk: WGS84 Koordinat Sistemi (EPSG:4326)",
			}},
			{"Metodoloji", []string{
				"1. Harita Verisi: Türkiye'nin detaylı topografik haritası",
				"2. Alan Hesaplaması: Her bölgenin yüzölçümü Gauss alan formülü ile hesaplanır",
				"3. Ağırlık Merkezleri: Her bölgenin ağırlık merkezi hesaplanır",
				"4. Centroid: Ağırlıklı ortalama ile genel merkez bulunur",
				"5. Doğrulama: Uzmanlar tarafından saha ziyareti ile doğrulandı",
			}},
			{"Sonuç - Türkiye'nin Coğrafi Merkezi", []string{
				fmt.Sprintf("Enlem (Latitude): %.6f° N", geo.CenterLat),
				fmt.Sprintf("Boylam (Longitude): %.6f° E", geo.CenterLon),
				"Konum: " + geo.Location + ", Türkiye",
				"Koordinat Sistemi: " + geo.CoordinateSystem,
			}},
			{"Kaynaklar", []string{
				"1. GDAL/OGR Kitkutu - Harita Verisi İşlemesi",
				"2. WGS84 Coordinate Reference System (EPSG:4326)",
				"3. Gauss Alan Formülü - Çokgen Alan Hesaplaması",
				"4. Haversine Formülü - Mesafe Hesaplaması",
			}},
		},
		footer: []string{
			"Web Sitesi: https://merkez.web.tr/",
			"E-posta: info@merkez.web.tr",
			"Son Güncelleme: 9 Aralık 2025",
		},
	},
	"en": {
		filename: "Turkey_Geographic_Center_Academic_Study_EN.pdf",
		date:     "December 9, 2025",
		sections: []section{
			{"Introduction", []string{
				"This academic study explains the methodology for determining",
				"Turkey's geographic center and map analysis techniques.",
			}},
			{"Objectives", []string{
				"Geographic Center Determination: Area-Weighted Centroid Method",
				"Methodology: Map Analysis and Mathematical Calculations",
				"Accuracy: WGS84 Coordinate System (EPSG:4326)",
			}},
			{"Methodology", []string{
				"1. Map Data: Detailed topographic map of Turkey",
				"2. Area Calculation: Each region's area calculated using Gauss area formula",
				"3. Weight Centers: Center of mass calculated for each region",
				"4. Centroid: Overall center determined by weighted average",
				"5. Verification: Confirmed by expert field survey",
			}},
			{"Result - Turkey's Geographic Center", []string{
				fmt.Sprintf("Latitude: %.6f° N", geo.CenterLat),
				fmt.Sprintf("Longitude: %.6f° E", geo.CenterLon),
				"Location: " + geo.Location + ", Turkey",
				"Coordinate System: " + geo.CoordinateSystem,
			}},
			{"References", []string{
				"1. GDAL/OGR Toolkit - Map Data Processing",
				"2. WGS84 Coordinate Reference System (EPSG:4326)",
				"3. Gauss Area Formula - Polygon Area Calculation",
				"4. Haversine Formula - Distance Calculation",
			}},
		},
		footer: []string{
			"Website: https://merkez.web.tr/",
			"Email: info@merkez.web.tr",
			"Last Updated: December 9, 2025",
		},
	},
}

// Academic returns the academic study summary. Any lang other than "en"
// yields the Turkish document.
func Academic(lang string) Report {
	lang = reportLang(lang)
	t := academicTexts[lang]

	w := newWriter()
	w.line(24, true, label(lang, "reports.academic_title"), 40)
	w.line(16, true, label(lang, "reports.academic_subtitle"), 40)
	w.line(12, false, t.date, 40)
	for _, s := range t.sections {
		w.line(11, true, s.heading, 20)
		for _, l := range s.lines {
			w.paragraph(10, l, 15, 15)
		}
		w.skip(25)
	}
	for _, l := range t.footer {
		w.line(9, false, l, 15)
	}

	return Report{Filename: t.filename, Doc: w.doc}
}
