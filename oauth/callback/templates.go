package callback

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	pageSuccess        = "success.html"
	pageMissingRefresh = "missing_refresh.html"
)

type pageData struct {
	Title        string
	Service      string
	EnvKey       string
	RefreshToken string
	QRCode       template.URL
	Stored       bool
	RevokeURL    string
	LoginURL     string
}
