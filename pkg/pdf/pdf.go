// Package pdf renders a report into a paginated PDF with an outline.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/report"
)

// ErrPageSize is returned by New for an unsupported paper size.
var ErrPageSize = errors.New("pdf: unsupported page size")

// Page geometry in millimetres.
const (
	marginLeft   = 20.0
	marginRight  = 20.0
	marginTop    = 30.0
	marginBottom = 20.0

	logoX        = 15.0
	coverLogoBox = 60.0
	pageLogoBox  = 40.0
	pageLogoMaxH = 24.0
)

var pageSizes = map[string]string{
	"A4":     "A4",
	"LETTER": "Letter",
}

// Config configures a Renderer.
type Config struct {
	// PageSize is A4 (default) or LETTER.
	PageSize string

	// Logo is an optional PNG or JPEG drawn in the page header.
	Logo string

	// Uncompressed disables stream compression so the text stays
	// readable in the raw file.
	Uncompressed bool

	Logger *slog.Logger
}

// anchor is a level-0 outline target.
type anchor struct {
	title string
	at    outline.Location
	sec   *sectionInfo
}

// Renderer implements report.Renderer on top of fpdf. It is not safe for
// concurrent use.
type Renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	log *slog.Logger

	logo      string
	logoRatio float64 // height / width
	coverTop  float64

	reportID string
	anchors  []anchor
	finished bool
}

var _ report.Renderer = (*Renderer)(nil)

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// New prepares an empty document.
func New(cfg Config) (*Renderer, error) {
	size := cfg.PageSize
	if size == "" {
		size = defaults.PaperSize
	}
	fsize, ok := pageSizes[strings.ToUpper(size)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPageSize, cfg.PageSize)
	}

	pdf := gofpdf.New("P", "mm", fsize, "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetCompression(!cfg.Uncompressed)
	pdf.AliasNbPages("")
	pdf.SetCreator(defaults.UserAgent(), true)

	r := &Renderer{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		log:      orDefault(cfg.Logger),
		coverTop: marginTop,
	}
	if cfg.Logo != "" {
		r.loadLogo(cfg.Logo)
	}
	pdf.SetHeaderFunc(r.header)
	pdf.SetFooterFunc(r.footer)
	return r, nil
}

// loadLogo registers the header image. A logo that cannot be read is
// dropped with a warning.
func (r *Renderer) loadLogo(path string) {
	if _, err := os.Stat(path); err != nil {
		r.log.Warn("logo unavailable", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	info := r.pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ReadDpi: true})
	if r.pdf.Err() || info == nil || info.Width() <= 0 {
		r.log.Warn("logo unreadable", slog.String("path", path), slog.Any("error", r.pdf.Error()))
		r.pdf.ClearError()
		return
	}
	r.logo = path
	r.logoRatio = info.Height() / info.Width()
	r.coverTop = max(marginTop, 5+min(coverLogoBox, coverLogoBox*r.logoRatio)+8)
}

// fit returns the size of the logo scaled into a box, keeping its
// aspect ratio.
func (r *Renderer) fit(boxW, boxH float64) (w, h float64) {
	w, h = boxW, boxW*r.logoRatio
	if h > boxH {
		h = boxH
		w = boxH / r.logoRatio
	}
	return w, h
}

func (r *Renderer) header() {
	if r.logo == "" {
		return
	}
	var w, h, y float64
	if r.pdf.PageNo() == 1 {
		w, h = r.fit(coverLogoBox, coverLogoBox)
		y = 5
	} else {
		w, h = r.fit(pageLogoBox, pageLogoMaxH)
		y = (marginTop - h) / 2
	}
	r.pdf.ImageOptions(r.logo, logoX, y, w, h, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (r *Renderer) footer() {
	pdf := r.pdf
	pdf.SetY(-15)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	half := r.contentWidth() / 2
	if r.reportID != "" {
		pdf.CellFormat(half, 5, r.tr("Report "+r.reportID), "", 0, "L", false, 0, "")
	} else {
		pdf.CellFormat(half, 5, "", "", 0, "L", false, 0, "")
	}
	pdf.CellFormat(half, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (r *Renderer) contentWidth() float64 {
	w, _ := r.pdf.GetPageSize()
	return w - marginLeft - marginRight
}

// bottom is the lowest y content may reach.
func (r *Renderer) bottom() float64 {
	_, h := r.pdf.GetPageSize()
	return h - marginBottom
}

func (r *Renderer) here() outline.Location {
	return outline.Location{Page: r.pdf.PageNo(), Y: r.pdf.GetY()}
}

// newPage starts a page and moves to the top of its content area.
func (r *Renderer) newPage() {
	r.pdf.AddPage()
	r.pdf.SetXY(marginLeft, marginTop)
}

// ensure moves to a new page when h more millimetres do not fit. It
// reports whether a page was added.
func (r *Renderer) ensure(h float64) bool {
	if r.pdf.GetY()+h <= r.bottom() || r.pdf.GetY() <= marginTop {
		return false
	}
	r.newPage()
	return true
}

// Pages returns the number of pages drawn so far.
func (r *Renderer) Pages() int {
	return r.pdf.PageCount()
}

// Output writes the finished document to w.
func (r *Renderer) Output(w io.Writer) error {
	if !r.finished {
		return errors.New("pdf: output before Finish")
	}
	return r.pdf.Output(w)
}

// WriteFile writes the finished document to path.
func (r *Renderer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Output(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
