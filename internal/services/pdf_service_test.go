package services

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestVoucherGroups(t *testing.T) {
	tests := []struct {
		count int
		want  []int
	}{
		{0, nil},
		{1, []int{1}},
		{3, []int{3}},
		{4, []int{3, 1}},
		{7, []int{3, 3, 1}},
		{9, []int{3, 3, 3}},
	}
	for _, tt := range tests {
		vouchers := make([]Voucher, tt.count)
		groups := voucherGroups(vouchers)
		if len(groups) != len(tt.want) {
			t.Errorf("voucherGroups(%d): %d groups, want %d", tt.count, len(groups), len(tt.want))
			continue
		}
		for i, g := range groups {
			if len(g) != tt.want[i] {
				t.Errorf("voucherGroups(%d): group %d has %d, want %d", tt.count, i, len(g), tt.want[i])
			}
		}
	}
}

func TestResolveCell(t *testing.T) {
	p := etiquetaA4

	// A4 content area split into the 5x6 grid
	labelW := (a4Width - 2*p.Margin) / float64(p.Cols)
	labelH := (a4Height - 2*p.Margin) / float64(p.Rows)
	l := p.resolveCell(labelW, labelH)

	if l.QRSize < p.MinQRSize {
		t.Errorf("QRSize = %f, below minimum %f", l.QRSize, p.MinQRSize)
	}
	if l.QRSize > labelW*p.QRWidthRatio {
		t.Errorf("QRSize = %f exceeds width limit %f", l.QRSize, labelW*p.QRWidthRatio)
	}
	if l.CodeBoxHeight < p.MinCodeBoxHeight {
		t.Errorf("CodeBoxHeight = %f, below minimum %f", l.CodeBoxHeight, p.MinCodeBoxHeight)
	}
	if l.TitleFontSize < 6 || l.TitleFontSize > 8 {
		t.Errorf("TitleFontSize = %f, want within [6, 8]", l.TitleFontSize)
	}

	// a degenerate cell still yields the floor sizes
	tiny := p.resolveCell(10, 10)
	if tiny.QRSize != p.MinQRSize {
		t.Errorf("tiny cell QRSize = %f, want %f", tiny.QRSize, p.MinQRSize)
	}
	if tiny.CodeBoxHeight != p.MinCodeBoxHeight {
		t.Errorf("tiny cell CodeBoxHeight = %f, want %f", tiny.CodeBoxHeight, p.MinCodeBoxHeight)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 6, 8); got != 6 {
		t.Errorf("clamp(5,6,8) = %f", got)
	}
	if got := clamp(9, 6, 8); got != 8 {
		t.Errorf("clamp(9,6,8) = %f", got)
	}
	if got := clamp(7, 6, 8); got != 7 {
		t.Errorf("clamp(7,6,8) = %f", got)
	}
}

// newTestPDFConfig points all working directories into a temp dir and the
// fonts directory at the repo checkout, regardless of the test's working
// directory. Tests that render real documents skip only when the fonts are
// genuinely not checked out.
func newTestPDFConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	cfg.FontsDir = filepath.Join(repoRoot, "assets", "fonts", "Poppins")
	tmp := t.TempDir()
	cfg.QRCodeDir = filepath.Join(tmp, "qrcodes")
	cfg.TempOutputDir = filepath.Join(tmp, "temp_output")
	if _, err := os.Stat(cfg.FontBoldPath()); err != nil {
		t.Skipf("font files not available: %v", err)
	}
	return cfg
}

// writeTestTemplate builds a small voucher template of the given page count.
func writeTestTemplate(t *testing.T, path string, pages int) {
	t.Helper()
	tpl := gofpdf.New("P", "pt", "A4", "")
	tpl.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		tpl.AddPage()
		tpl.Text(40, 40, fmt.Sprintf("template page %d", i+1))
	}
	if err := tpl.OutputFileAndClose(path); err != nil {
		t.Fatalf("building test template: %v", err)
	}
}

func TestBuildVoucherPDFAssemblesGroups(t *testing.T) {
	cfg := newTestPDFConfig(t)
	pdfSvc := NewPDFService(cfg)
	qrSvc := NewQRService(cfg)

	templatePath := filepath.Join(t.TempDir(), "template.pdf")
	writeTestTemplate(t, templatePath, 2)

	folder := "batch"
	qrDir := filepath.Join(cfg.QRCodeDir, folder)
	if err := os.MkdirAll(qrDir, 0o755); err != nil {
		t.Fatal(err)
	}
	vouchers := make([]Voucher, 7)
	for i := range vouchers {
		vouchers[i] = Voucher{Code: fmt.Sprintf("CODE%02d", i), Expiration: "31/12/2026"}
	}
	// the last voucher gets no QR asset; its slot renders the placeholder
	for _, v := range vouchers[:6] {
		qrPath := filepath.Join(qrDir, VoucherAssetName(v.Code, v.Expiration))
		if err := qrSvc.Generate("https://example.com/?voucher="+v.Code, qrPath); err != nil {
			t.Fatalf("generating QR asset: %v", err)
		}
	}

	out, err := pdfSvc.BuildVoucherPDF(templatePath, vouchers, folder)
	if err != nil {
		t.Fatalf("BuildVoucherPDF: %v", err)
	}
	defer os.Remove(out)

	// three groups of up to three vouchers, each a stamped first page
	// followed by the template's second page
	count, err := api.PageCountFile(out)
	if err != nil {
		t.Fatalf("reading page count: %v", err)
	}
	if count != 6 {
		t.Errorf("page count = %d, want 6", count)
	}
}

func TestBuildVoucherPDFSinglePageTemplate(t *testing.T) {
	cfg := newTestPDFConfig(t)
	pdfSvc := NewPDFService(cfg)
	qrSvc := NewQRService(cfg)

	templatePath := filepath.Join(t.TempDir(), "template.pdf")
	writeTestTemplate(t, templatePath, 1)

	folder := "batch"
	qrDir := filepath.Join(cfg.QRCodeDir, folder)
	if err := os.MkdirAll(qrDir, 0o755); err != nil {
		t.Fatal(err)
	}
	vouchers := make([]Voucher, 4)
	for i := range vouchers {
		vouchers[i] = Voucher{Code: fmt.Sprintf("CODE%02d", i), Expiration: "31/12/2026"}
		qrPath := filepath.Join(qrDir, VoucherAssetName(vouchers[i].Code, vouchers[i].Expiration))
		if err := qrSvc.Generate("https://example.com/?voucher="+vouchers[i].Code, qrPath); err != nil {
			t.Fatalf("generating QR asset: %v", err)
		}
	}

	out, err := pdfSvc.BuildVoucherPDF(templatePath, vouchers, folder)
	if err != nil {
		t.Fatalf("BuildVoucherPDF: %v", err)
	}
	defer os.Remove(out)

	// no trailing pages to interleave: one stamped page per group
	count, err := api.PageCountFile(out)
	if err != nil {
		t.Fatalf("reading page count: %v", err)
	}
	if count != 2 {
		t.Errorf("page count = %d, want 2", count)
	}
}

func TestBuildEtiquetaPDFPaging(t *testing.T) {
	cfg := newTestPDFConfig(t)
	svc := NewPDFService(cfg)

	// 31 labels fill one 30-cell page plus one on a second page; missing QR
	// assets fall back to the placeholder, which is fine for page counting.
	vouchers := make([]Voucher, 31)
	for i := range vouchers {
		vouchers[i] = Voucher{Code: fmt.Sprintf("CODE%02d", i), Expiration: "31/12/2026"}
	}

	out, err := svc.BuildEtiquetaPDF(vouchers, "missing-session")
	if err != nil {
		t.Fatalf("BuildEtiquetaPDF: %v", err)
	}
	defer os.Remove(out)

	count, err := api.PageCountFile(out)
	if err != nil {
		t.Fatalf("reading page count: %v", err)
	}
	if count != 2 {
		t.Errorf("page count = %d, want 2", count)
	}
}

func TestBuildEtiquetaPDFWithQRAssets(t *testing.T) {
	cfg := newTestPDFConfig(t)
	pdfSvc := NewPDFService(cfg)
	qrSvc := NewQRService(cfg)

	folder := "test-session"
	if err := os.MkdirAll(filepath.Join(cfg.QRCodeDir, folder), 0o755); err != nil {
		t.Fatal(err)
	}
	vouchers := []Voucher{{Code: "ABC123", Expiration: "31/12/2026"}}
	qrPath := filepath.Join(cfg.QRCodeDir, folder, VoucherAssetName("ABC123", "31/12/2026"))
	if err := qrSvc.Generate("https://example.com/?voucher=ABC123", qrPath); err != nil {
		t.Fatalf("generating QR asset: %v", err)
	}

	out, err := pdfSvc.BuildEtiquetaPDF(vouchers, folder)
	if err != nil {
		t.Fatalf("BuildEtiquetaPDF: %v", err)
	}
	defer os.Remove(out)

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("etiqueta PDF is empty")
	}
}
