package services

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Voucher is one (code, expiration date) pair rendered as a QR code plus
// human-readable text.
type Voucher struct {
	Code       string
	Expiration string
}

// slotAnchor fixes where one of the three vouchers on a templated page is
// anchored, in PDF points from the bottom-left corner.
type slotAnchor struct {
	X       float64
	YBase   float64
	Size    float64
	Spacing float64
}

// Anchor table tuned for the current voucher template artwork; slot index is
// the voucher's position within its group of three.
var voucherSlots = []slotAnchor{
	{X: 441, YBase: 612, Size: 70, Spacing: 30},
	{X: 441, YBase: 400, Size: 70, Spacing: 30},
	{X: 441, YBase: 187, Size: 70, Spacing: 30},
}

// verticalAdjustment is added to every slot's YBase at render time; positive
// values move the whole voucher stack up the page.
const verticalAdjustment = 50.0

const vouchersPerPage = 3

// Offsets below the QR image, tuned for the template artwork.
const (
	codeGap           = 19.0 // QR bottom to code text
	expirationGap     = 53.0 // code text to expiration line
	expirationPadding = 3.0  // white backing rect padding
	expirationBackH   = 10.0 // white backing rect height
)

// brand color of the voucher artwork
const (
	brandR = 22
	brandG = 71
	brandB = 105
)

// A4 in points
const (
	a4Width  = 595.28
	a4Height = 841.89
)

// etiquetaParams holds the label-sheet grid and the per-cell proportions.
// Everything inside a cell is a ratio of the cell's dimensions so the layout
// survives a change of page size or grid density.
type etiquetaParams struct {
	Cols   int
	Rows   int
	Margin float64

	PaddingTopRatio    float64
	PaddingBottomRatio float64
	QRWidthRatio       float64
	QRTitleGapRatio    float64
	TitleCodeGapRatio  float64
	CodeBoxHeightRatio float64
	CodeBoxWidthRatio  float64

	MinQRSize        float64
	MinCodeBoxHeight float64
}

var etiquetaA4 = etiquetaParams{
	Cols:   5,
	Rows:   6,
	Margin: 30,

	PaddingTopRatio:    0.05,
	PaddingBottomRatio: 0.05,
	QRWidthRatio:       0.9,
	QRTitleGapRatio:    0.03,
	TitleCodeGapRatio:  0.03,
	CodeBoxHeightRatio: 0.16,
	CodeBoxWidthRatio:  0.9,

	MinQRSize:        20,
	MinCodeBoxHeight: 12,
}

const etiquetaTitle = "O SEU VOUCHER"

// cellLayout is the resolved vertical geometry of one label cell.
type cellLayout struct {
	PadTop        float64
	PadBottom     float64
	TitleFontSize float64
	TitleHeight   float64
	CodeBoxHeight float64
	QRTitleGap    float64
	TitleCodeGap  float64
	QRSize        float64
}

// resolveCell turns the proportional parameters into concrete sizes for one
// cell. The QR takes whatever vertical space the title and code box leave,
// but never shrinks below MinQRSize even if that overflows the cell.
func (p etiquetaParams) resolveCell(labelW, labelH float64) cellLayout {
	l := cellLayout{
		PadTop:       labelH * p.PaddingTopRatio,
		PadBottom:    labelH * p.PaddingBottomRatio,
		QRTitleGap:   labelH * p.QRTitleGapRatio,
		TitleCodeGap: labelH * p.TitleCodeGapRatio,
	}
	l.TitleFontSize = clamp(labelH*0.075, 6, 8)
	l.TitleHeight = l.TitleFontSize * 1.15
	l.CodeBoxHeight = math.Max(p.MinCodeBoxHeight, labelH*p.CodeBoxHeightRatio)

	avail := labelH - l.PadTop - l.TitleHeight - l.CodeBoxHeight - l.QRTitleGap - l.TitleCodeGap - l.PadBottom
	avail = math.Max(p.MinQRSize, avail)
	l.QRSize = math.Max(p.MinQRSize, math.Min(labelW*p.QRWidthRatio, avail))
	return l
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// voucherGroups splits vouchers into consecutive groups of three; the last
// group may be short and its unused slots are simply not rendered.
func voucherGroups(vouchers []Voucher) [][]Voucher {
	var groups [][]Voucher
	for i := 0; i < len(vouchers); i += vouchersPerPage {
		end := i + vouchersPerPage
		if end > len(vouchers) {
			end = len(vouchers)
		}
		groups = append(groups, vouchers[i:end])
	}
	return groups
}

// PDFService is the layout engine: it renders voucher overlays and label
// sheets with gofpdf and manipulates template documents with pdfcpu.
type PDFService struct {
	cfg *config.Config
}

func NewPDFService(cfg *config.Config) *PDFService { return &PDFService{cfg: cfg} }

// newDoc creates a gofpdf document of the given page size with the Poppins
// faces registered. Missing TTFs surface as a FontError before any drawing.
func (s *PDFService) newDoc(w, h float64) (*gofpdf.Fpdf, error) {
	for _, f := range []string{s.cfg.FontBoldPath(), s.cfg.FontRegularPath()} {
		if _, err := os.Stat(f); err != nil {
			return nil, &FontError{File: f}
		}
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		FontDirStr:     s.cfg.FontsDir,
	})
	pdf.AddUTF8Font("Poppins", "B", s.cfg.FontBoldFile)
	pdf.AddUTF8Font("Poppins", "", s.cfg.FontRegularFile)
	if pdf.Err() {
		return nil, &FontError{File: s.cfg.FontsDir, Err: pdf.Error()}
	}
	pdf.SetAutoPageBreak(false, 0)
	return pdf, nil
}

// BuildVoucherPDF assembles the voucher-mode document: one stamped copy of
// the template's first page per group of three vouchers, each followed by
// the template's remaining pages. Returns the path of the finished PDF
// inside the temp output directory; the caller owns the file.
func (s *PDFService) BuildVoucherPDF(templatePath string, vouchers []Voucher, qrFolder string) (string, error) {
	ctx, err := api.ReadContextFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("loading template %s: %w", templatePath, err)
	}
	dims, err := ctx.PageDims()
	if err != nil || len(dims) == 0 {
		return "", fmt.Errorf("reading template page size: %w", err)
	}
	// all template pages are assumed to share the first page's size
	pageW, pageH := dims[0].Width, dims[0].Height
	pageCount := ctx.PageCount

	if err := os.MkdirAll(s.cfg.TempOutputDir, 0o755); err != nil {
		return "", err
	}
	workDir, err := os.MkdirTemp(s.cfg.TempOutputDir, "vouchers-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(workDir)

	conf := model.NewDefaultConfiguration()

	firstPage := filepath.Join(workDir, "template_page1.pdf")
	if err := api.TrimFile(templatePath, firstPage, []string{"1"}, conf); err != nil {
		return "", fmt.Errorf("extracting template first page: %w", err)
	}
	trailing := ""
	if pageCount > 1 {
		trailing = filepath.Join(workDir, "template_rest.pdf")
		if err := api.TrimFile(templatePath, trailing, []string{"2-"}, conf); err != nil {
			return "", fmt.Errorf("extracting template trailing pages: %w", err)
		}
	}

	var parts []string
	for gi, group := range voucherGroups(vouchers) {
		overlayPath := filepath.Join(workDir, fmt.Sprintf("overlay_%d.pdf", gi))
		if err := s.renderVoucherOverlay(overlayPath, pageW, pageH, group, qrFolder); err != nil {
			return "", err
		}

		wm, err := pdfcpu.ParsePDFWatermarkDetails(overlayPath, "pos:bl, scale:1 abs, rot:0", true, types.POINTS)
		if err != nil {
			return "", fmt.Errorf("building overlay stamp: %w", err)
		}
		stamped := filepath.Join(workDir, fmt.Sprintf("stamped_%d.pdf", gi))
		if err := api.AddWatermarksFile(firstPage, stamped, nil, wm, conf); err != nil {
			return "", fmt.Errorf("stamping overlay: %w", err)
		}
		parts = append(parts, stamped)

		// A multi-page template's trailing pages recur after every group of
		// three, matching the long-standing generator behaviour (page two is
		// treated as an insert that repeats with each voucher sheet).
		if trailing != "" {
			parts = append(parts, trailing)
		}
	}

	out := filepath.Join(s.cfg.TempOutputDir, fmt.Sprintf("vouchers_%d.pdf", time.Now().UnixNano()))
	if err := api.MergeCreateFile(parts, out, false, conf); err != nil {
		return "", fmt.Errorf("merging voucher pages: %w", err)
	}
	return out, nil
}

// renderVoucherOverlay draws up to three voucher stacks (QR, code,
// expiration line) on a single transparent page sized to the template.
func (s *PDFService) renderVoucherOverlay(outPath string, pageW, pageH float64, group []Voucher, qrFolder string) error {
	pdf, err := s.newDoc(pageW, pageH)
	if err != nil {
		return err
	}
	pdf.AddPage()

	for i, v := range group {
		if i >= len(voucherSlots) {
			break
		}
		slot := voucherSlots[i]
		yBase := slot.YBase + verticalAdjustment

		qrPath := filepath.Join(s.cfg.QRCodeDir, qrFolder, VoucherAssetName(v.Code, v.Expiration))
		if _, err := os.Stat(qrPath); err != nil {
			log.Printf("WARN: QR asset missing, rendering placeholder: %s", qrPath)
			pdf.SetFont("Poppins", "", 8)
			pdf.SetTextColor(255, 0, 0)
			pdf.SetXY(slot.X, pageH-yBase-slot.Size/2)
			pdf.CellFormat(slot.Size, 10, "QR Code N/A", "", 0, "C", false, 0, "")
			continue
		}

		qrTop := pageH - yBase - slot.Size
		pdf.ImageOptions(qrPath, slot.X, qrTop, slot.Size, slot.Size, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		// voucher code, centered under the QR
		pdf.SetFont("Poppins", "B", 9)
		pdf.SetTextColor(brandR, brandG, brandB)
		codeW := pdf.GetStringWidth(v.Code)
		codeX := slot.X + slot.Size/2 - codeW/2
		codeY := qrTop + slot.Size + codeGap
		pdf.Text(codeX, codeY+9, v.Code)

		// expiration line over an opaque white rect that masks template art
		pdf.SetFont("Poppins", "", 6)
		expText := "*ativação válida até " + strings.TrimSpace(v.Expiration)
		expW := pdf.GetStringWidth(expText)
		expX := slot.X + slot.Size/2 - expW/2
		expY := codeY + expirationGap
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(expX-expirationPadding, expY-2, expW+2*expirationPadding, expirationBackH, "F")
		pdf.SetTextColor(brandR, brandG, brandB)
		pdf.Text(expX, expY+6, expText)
	}

	if pdf.Err() {
		return fmt.Errorf("rendering voucher overlay: %w", pdf.Error())
	}
	return pdf.OutputFileAndClose(outPath)
}

// BuildEtiquetaPDF renders the label-sheet document: a 5x6 grid of
// self-contained label cells on blank A4 pages, filled row-major, a new
// page per 30 vouchers. Returns the path of the finished PDF.
func (s *PDFService) BuildEtiquetaPDF(vouchers []Voucher, qrFolder string) (string, error) {
	p := etiquetaA4
	pdf, err := s.newDoc(a4Width, a4Height)
	if err != nil {
		return "", err
	}
	pdf.SetMargins(p.Margin, p.Margin, p.Margin)

	contentW := a4Width - 2*p.Margin
	contentH := a4Height - 2*p.Margin
	labelW := contentW / float64(p.Cols)
	labelH := contentH / float64(p.Rows)

	idx := 0
	for idx < len(vouchers) {
		pdf.AddPage()
		for r := 0; r < p.Rows && idx < len(vouchers); r++ {
			for c := 0; c < p.Cols && idx < len(vouchers); c++ {
				cellX := p.Margin + float64(c)*labelW
				cellY := p.Margin + float64(r)*labelH
				s.renderLabelCell(pdf, p, cellX, cellY, labelW, labelH, vouchers[idx], qrFolder)
				idx++
			}
		}
	}

	if pdf.Err() {
		return "", fmt.Errorf("rendering etiqueta sheet: %w", pdf.Error())
	}
	if err := os.MkdirAll(s.cfg.TempOutputDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(s.cfg.TempOutputDir, fmt.Sprintf("etiquetas_%d.pdf", time.Now().UnixNano()))
	if err := pdf.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("writing etiqueta sheet: %w", err)
	}
	return out, nil
}

// renderLabelCell draws one bordered label. The stack runs QR, then title,
// then code box, top to bottom; the shipped sheets print in this order, so
// keep it even though the title reads like a header.
func (s *PDFService) renderLabelCell(pdf *gofpdf.Fpdf, p etiquetaParams, cellX, cellY, labelW, labelH float64, v Voucher, qrFolder string) {
	l := p.resolveCell(labelW, labelH)

	pdf.SetDrawColor(brandR, brandG, brandB)
	pdf.SetLineWidth(0.5)
	pdf.Rect(cellX, cellY, labelW, labelH, "D")

	qrX := cellX + (labelW-l.QRSize)/2
	qrY := cellY + l.PadTop

	qrPath := filepath.Join(s.cfg.QRCodeDir, qrFolder, VoucherAssetName(v.Code, v.Expiration))
	if _, err := os.Stat(qrPath); err == nil {
		pdf.ImageOptions(qrPath, qrX, qrY, l.QRSize, l.QRSize, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	} else {
		log.Printf("WARN: QR asset missing for label, rendering placeholder: %s", qrPath)
		errSize := math.Max(6, l.QRSize*0.12)
		pdf.SetFont("Poppins", "", errSize)
		pdf.SetTextColor(255, 0, 0)
		pdf.SetXY(qrX, qrY+(l.QRSize-errSize)/2)
		pdf.CellFormat(l.QRSize, errSize, "QR N/A", "", 0, "C", false, 0, "")
	}

	// title, centered below the QR
	pdf.SetFont("Poppins", "B", l.TitleFontSize)
	pdf.SetTextColor(brandR, brandG, brandB)
	titleY := qrY + l.QRSize + l.QRTitleGap
	pdf.SetXY(cellX, titleY)
	pdf.CellFormat(labelW, l.TitleHeight, etiquetaTitle, "", 0, "C", false, 0, "")

	// bordered code box; kept inside the cell even when the stack above it
	// would push it out
	codeBoxW := labelW * p.CodeBoxWidthRatio
	codeBoxX := cellX + (labelW-codeBoxW)/2
	codeBoxY := titleY + l.TitleHeight + l.TitleCodeGap
	maxBoxY := cellY + labelH - l.PadBottom - l.CodeBoxHeight
	if codeBoxY > maxBoxY {
		codeBoxY = maxBoxY
	}
	if lower := titleY + l.TitleHeight + l.TitleCodeGap; codeBoxY < lower {
		codeBoxY = lower
	}

	pdf.SetLineWidth(1)
	pdf.Rect(codeBoxX, codeBoxY, codeBoxW, l.CodeBoxHeight, "D")

	codeFontSize := clamp(l.CodeBoxHeight*0.45, 6, 8)
	pdf.SetFont("Poppins", "", codeFontSize)
	textH := codeFontSize * 1.15
	pdf.SetXY(codeBoxX, codeBoxY+(l.CodeBoxHeight-textH)/2)
	pdf.CellFormat(codeBoxW, textH, v.Code, "", 0, "C", false, 0, "")
}

// StampInvite lays a QR code and its text onto a fresh copy of the invite
// template's first page and writes the result to outPath.
func (s *PDFService) StampInvite(templatePath, qrPath, code, outPath string) error {
	ctx, err := api.ReadContextFile(templatePath)
	if err != nil {
		return fmt.Errorf("loading invite template %s: %w", templatePath, err)
	}
	dims, err := ctx.PageDims()
	if err != nil || len(dims) == 0 {
		return fmt.Errorf("reading invite template page size: %w", err)
	}
	pageW, pageH := dims[0].Width, dims[0].Height

	overlay := outPath + ".overlay.pdf"
	if err := s.renderInviteOverlay(overlay, pageW, pageH, qrPath, code); err != nil {
		return err
	}
	defer os.Remove(overlay)

	wm, err := pdfcpu.ParsePDFWatermarkDetails(overlay, "pos:bl, scale:1 abs, rot:0", true, types.POINTS)
	if err != nil {
		return fmt.Errorf("building invite stamp: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	if err := api.AddWatermarksFile(templatePath, outPath, []string{"1"}, wm, conf); err != nil {
		return fmt.Errorf("stamping invite: %w", err)
	}
	return nil
}

// Fixed anchor of the QR block on the invite template, in points from the
// bottom-left corner.
const (
	inviteQRX      = 563.0
	inviteQRY      = 210.0
	inviteQRSize   = 100.0
	inviteTextY    = 195.0 // text baseline
	inviteTextSize = 12.0
)

func (s *PDFService) renderInviteOverlay(outPath string, pageW, pageH float64, qrPath, code string) error {
	pdf, err := s.newDoc(pageW, pageH)
	if err != nil {
		return err
	}
	pdf.AddPage()

	qrTop := pageH - inviteQRY - inviteQRSize
	pdf.ImageOptions(qrPath, inviteQRX, qrTop, inviteQRSize, inviteQRSize, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Poppins", "B", inviteTextSize)
	pdf.SetTextColor(0, 0, 0)
	textW := pdf.GetStringWidth(code)
	textX := inviteQRX + (inviteQRSize-textW)/2
	pdf.Text(textX, pageH-inviteTextY, code)

	if pdf.Err() {
		return fmt.Errorf("rendering invite overlay: %w", pdf.Error())
	}
	return pdf.OutputFileAndClose(outPath)
}
