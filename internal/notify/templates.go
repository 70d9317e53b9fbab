package notify

import (
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
)

type codeTemplateData struct {
	ParkName string
	Code     string
	Minutes  int
}

type consentTemplateData struct {
	ParkName    string
	AdultName   string
	Consecutivo int64
	SignedAt    string
	ValidUntil  string
	Minors      []models.MinorRecord
	HasPDF      bool
}

// executor is satisfied by both text and html templates
type executor interface {
	Execute(w io.Writer, data any) error
}

var (
	codeTextTemplate = texttemplate.Must(texttemplate.New("code_text").Parse(
		`Tu código de verificación de {{.ParkName}} es {{.Code}}.
Vence en {{.Minutes}} minutos. Si no lo solicitaste, ignora este mensaje.
`))

	codeHTMLTemplate = htmltemplate.Must(htmltemplate.New("code_html").Parse(
		`<p>Tu código de verificación de <strong>{{.ParkName}}</strong> es:</p>
<p style="font-size:28px;letter-spacing:6px"><strong>{{.Code}}</strong></p>
<p>Vence en {{.Minutes}} minutos. Si no lo solicitaste, ignora este mensaje.</p>
`))

	consentTextTemplate = texttemplate.Must(texttemplate.New("consent_text").Parse(
		`Hola {{.AdultName}},

Registramos tu consentimiento No. {{.Consecutivo}} en {{.ParkName}} el {{.SignedAt}}.
Es válido hasta el {{.ValidUntil}} para:
{{range .Minors}}- {{.FullName}} ({{.BirthDate}})
{{end}}{{if .HasPDF}}
Adjuntamos el certificado en PDF.{{end}}
`))

	consentHTMLTemplate = htmltemplate.Must(htmltemplate.New("consent_html").Parse(
		`<p>Hola {{.AdultName}},</p>
<p>Registramos tu consentimiento <strong>No. {{.Consecutivo}}</strong> en {{.ParkName}} el {{.SignedAt}}.
Es válido hasta el {{.ValidUntil}} para:</p>
<ul>{{range .Minors}}<li>{{.FullName}} ({{.BirthDate}})</li>{{end}}</ul>
{{if .HasPDF}}<p>Adjuntamos el certificado en PDF.</p>{{end}}
`))
)
