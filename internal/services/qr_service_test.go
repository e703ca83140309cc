package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mssaude/voucher-service/internal/config"
)

func TestBuildVoucherURL(t *testing.T) {
	svc := NewQRService(&config.Config{QRBaseURL: "https://www.misericordiassaude.pt/aderir"})

	tests := []struct {
		name     string
		rec      Record
		promoter string
		want     string
	}{
		{
			name:     "all fields",
			rec:      Record{"public_id": "PLANO1", "code": "ABC123", "id_partner": "P42"},
			promoter: "PR7",
			want:     "https://www.misericordiassaude.pt/aderir?plano=PLANO1&voucher=ABC123&parceiro=P42&promotor=PR7",
		},
		{
			name: "blank fields skipped",
			rec:  Record{"public_id": "A", "code": "B", "id_partner": " "},
			want: "https://www.misericordiassaude.pt/aderir?plano=A&voucher=B",
		},
		{
			name: "all blank yields bare base URL",
			rec:  Record{"public_id": "", "code": "  "},
			want: "https://www.misericordiassaude.pt/aderir",
		},
		{
			name: "values escaped",
			rec:  Record{"code": "A B&C"},
			want: "https://www.misericordiassaude.pt/aderir?voucher=A+B%26C",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.BuildVoucherURL(tt.rec, tt.promoter); got != tt.want {
				t.Errorf("BuildVoucherURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateWritesPNG(t *testing.T) {
	svc := NewQRService(&config.Config{})
	path := filepath.Join(t.TempDir(), "qr.png")

	if err := svc.Generate("https://example.com/?voucher=ABC", path); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat generated PNG: %v", err)
	}
	if info.Size() == 0 {
		t.Error("generated PNG is empty")
	}
}

func TestVoucherAssetName(t *testing.T) {
	got := VoucherAssetName("ABC123", "31/12/2026")
	want := "qrcode_ABC123_31122026.png"
	if got != want {
		t.Errorf("VoucherAssetName = %q, want %q", got, want)
	}
}
