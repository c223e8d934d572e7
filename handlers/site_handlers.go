package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"merkez/api/geo"
	"merkez/api/i18n"
	"merkez/api/logging"
	"merkez/api/reports"
)

// requestLang picks the response language from ?lang= and Accept-Language.
func requestLang(c *gin.Context) string {
	return i18n.Match(c.Query("lang"), c.GetHeader("Accept-Language"))
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}

func serveReport(c *gin.Context, r reports.Report) {
	attachment(c, r.Filename)
	noCache(c)
	c.Data(http.StatusOK, "application/pdf", r.Doc.Bytes())
}

func VerificationReport(c *gin.Context) {
	serveReport(c, reports.Verification(requestLang(c)))
}

func AcademicReport(c *gin.Context) {
	serveReport(c, reports.Academic(requestLang(c)))
}

func CenterInfo(c *gin.Context) {
	c.JSON(http.StatusOK, geo.Info(requestLang(c)))
}

func CenterExtremes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"points":       geo.Extremes(requestLang(c)),
		"distances_km": geo.DistancesFromCenter(),
	})
}

func CenterGeoJSON(c *gin.Context) {
	data, err := geo.FeatureCollection().MarshalJSON()
	if err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("encoding center GeoJSON")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode GeoJSON"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

func CenterCSV(c *gin.Context) {
	attachment(c, "turkiye_merkez.csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := geo.WriteCSV(c.Writer); err != nil {
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("writing center CSV")
	}
}

// Dictionary serves the site translations for the best matching language.
func Dictionary(c *gin.Context) {
	lang := i18n.Match(c.Param("lang"), c.GetHeader("Accept-Language"))
	data, err := i18n.Dictionary(lang)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Language", lang)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
