package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/pkg/sanitize"
	qrcode "github.com/skip2/go-qrcode"
)

// qrPixelSize is the raster edge of every generated QR PNG.
const qrPixelSize = 300

type QRService struct {
	cfg *config.Config
}

func NewQRService(cfg *config.Config) *QRService { return &QRService{cfg: cfg} }

// Generate renders content as a QR code PNG at path, highest error
// correction, black on white.
func (s *QRService) Generate(content, path string) error {
	if err := qrcode.WriteFile(content, qrcode.Highest, qrPixelSize, path); err != nil {
		return fmt.Errorf("writing QR code %s: %w", path, err)
	}
	return nil
}

// BuildVoucherURL constructs the URL embedded in a voucher QR code. The
// parameter order plano, voucher, parceiro, promotor is fixed and each
// parameter appears only when its source value is non-blank; the query is
// assembled by hand because url.Values would sort the keys and the encoded
// URL must stay byte-stable across releases (it ends up printed on paper).
func (s *QRService) BuildVoucherURL(rec Record, promoterID string) string {
	var params []string
	add := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			params = append(params, key+"="+url.QueryEscape(v))
		}
	}
	add("plano", rec["public_id"])
	add("voucher", rec["code"])
	add("parceiro", rec["id_partner"])
	add("promotor", promoterID)

	if len(params) == 0 {
		return s.cfg.QRBaseURL
	}
	return s.cfg.QRBaseURL + "?" + strings.Join(params, "&")
}

// VoucherAssetName is the on-disk name of the QR PNG for one voucher. The
// layout engine rebuilds the same name at render time, so it must stay a
// pure function of code and expiration date.
func VoucherAssetName(code, expiration string) string {
	return sanitize.Filename(fmt.Sprintf("qrcode_%s_%s.png", code, expiration))
}
