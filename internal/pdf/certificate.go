// Package pdf renders the consent certificate emailed to the responsible adult.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/Numffy/jumping-park-app-sub000/internal/logging"
	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	pageMargin     = 15.0
	lineHeight     = 6.0
	signatureImage = "signature"
	logoWidth      = 30.0
	signatureWidth = 60.0
)

var relationshipLabels = map[models.Relationship]string{
	models.RelationshipChild:       "Hijo/a",
	models.RelationshipNephewNiece: "Sobrino/a",
	models.RelationshipGrandchild:  "Nieto/a",
	models.RelationshipOther:       "Otro",
}

const legalText = `Declaro que soy mayor de edad y responsable de los menores relacionados en este documento. ` +
	`Conozco las reglas de uso de las atracciones, las restricciones de estatura, edad y salud, y los riesgos ` +
	`inherentes a la actividad física que realizarán. Autorizo su ingreso y me comprometo a supervisarlos ` +
	`durante toda la visita. Acepto la política de tratamiento de datos personales en la versión indicada, ` +
	`la cual autoriza el uso de esta información únicamente para fines de registro, seguridad y contacto.`

// Config controls the certificate branding
type Config struct {
	ParkName string
	LogoPath string
}

// Renderer builds consent certificates with fpdf
type Renderer struct {
	cfg    Config
	logger *logging.SafeLogger
}

// NewRenderer creates a Renderer. A LogoPath that cannot be read is dropped
// with a warning so certificates still render.
func NewRenderer(cfg Config, logger *logging.SafeLogger) *Renderer {
	logger = logger.Named("pdf")
	if cfg.LogoPath != "" {
		if _, err := os.Stat(cfg.LogoPath); err != nil {
			logger.Warn("logo not readable, certificates will render without it",
				zap.String("path", cfg.LogoPath), zap.Error(err))
			cfg.LogoPath = ""
		}
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// RenderConsent returns the certificate as PDF bytes
func (r *Renderer) RenderConsent(ctx context.Context, consent *models.Consent, signature []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRender, err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCreationDate(consent.SignedAt)
	doc.SetTitle(fmt.Sprintf("Consentimiento No. %d", consent.Consecutivo), true)
	doc.SetAuthor(r.cfg.ParkName, true)
	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 5, tr(fmt.Sprintf("Consentimiento %s - página %d", consent.ID.Hex(), doc.PageNo())),
			"", 0, "C", false, 0, "")
	})
	doc.AddPage()

	r.header(doc, tr, consent)
	r.legal(doc, tr, consent)
	r.adult(doc, tr, consent)
	r.minors(doc, tr, consent)
	r.signature(doc, tr, signature)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(doc *fpdf.Fpdf, tr func(string) string, consent *models.Consent) {
	if r.cfg.LogoPath != "" {
		doc.ImageOptions(r.cfg.LogoPath, pageMargin, pageMargin, logoWidth, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
		doc.SetX(pageMargin + logoWidth + 5)
	}

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(r.cfg.ParkName), "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, tr("Consentimiento informado de ingreso de menores"), "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, lineHeight, tr(fmt.Sprintf("No. %d", consent.Consecutivo)), "", 1, "R", false, 0, "")
	doc.CellFormat(0, lineHeight, tr(fmt.Sprintf("Firmado: %s  Vigente hasta: %s",
		consent.SignedAt.Format("2006-01-02 15:04 MST"),
		consent.ValidUntil.Format("2006-01-02"))), "", 1, "R", false, 0, "")
	doc.Ln(8)
}

func (r *Renderer) legal(doc *fpdf.Fpdf, tr func(string) string, consent *models.Consent) {
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, tr(legalText), "", "J", false)
	doc.Ln(2)
	doc.SetFont("Helvetica", "I", 9)
	doc.CellFormat(0, 5, tr("Versión de la política: "+consent.PolicyVersion), "", 1, "L", false, 0, "")
	doc.Ln(4)
}

func (r *Renderer) adult(doc *fpdf.Fpdf, tr func(string) string, consent *models.Consent) {
	section(doc, tr, "Adulto responsable")
	rows := [][2]string{
		{"Nombre", consent.Adult.FullName},
		{"Cédula", consent.Adult.Cedula},
		{"Correo", consent.Adult.Email},
		{"Teléfono", consent.Adult.Phone},
	}
	if consent.Adult.Address != "" {
		rows = append(rows, [2]string{"Dirección", consent.Adult.Address})
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(35, lineHeight, tr(row[0]), "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, lineHeight, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	doc.Ln(4)
}

func (r *Renderer) minors(doc *fpdf.Fpdf, tr func(string) string, consent *models.Consent) {
	section(doc, tr, "Menores autorizados")
	widths := []float64{75, 30, 30, 45}
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, title := range []string{"Nombre", "Nacimiento", "Parentesco", "EPS"} {
		doc.CellFormat(widths[i], lineHeight, tr(title), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	for _, minor := range consent.Minors {
		label, ok := relationshipLabels[minor.Relationship]
		if !ok {
			label = string(minor.Relationship)
		}
		doc.CellFormat(widths[0], lineHeight, tr(minor.FullName), "1", 0, "L", false, 0, "")
		doc.CellFormat(widths[1], lineHeight, minor.BirthDate, "1", 0, "C", false, 0, "")
		doc.CellFormat(widths[2], lineHeight, tr(label), "1", 0, "C", false, 0, "")
		doc.CellFormat(widths[3], lineHeight, tr(minor.HealthInsurer), "1", 1, "L", false, 0, "")
	}
	doc.Ln(6)
}

func (r *Renderer) signature(doc *fpdf.Fpdf, tr func(string) string, signature []byte) {
	section(doc, tr, "Firma")
	if len(signature) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		info := doc.RegisterImageOptionsReader(signatureImage, opts, bytes.NewReader(signature))
		if info != nil && doc.Ok() {
			height := signatureWidth * info.Height() / info.Width()
			doc.ImageOptions(signatureImage, doc.GetX(), doc.GetY(), signatureWidth, height, true, opts, 0, "")
		}
	}
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(signatureWidth, 5, tr("Firma del adulto responsable"), "T", 1, "C", false, 0, "")
}

func section(doc *fpdf.Fpdf, tr func(string) string, title string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, tr(title), "B", 1, "L", false, 0, "")
	doc.Ln(2)
}
