package services

import (
	"fmt"
	"testing"
	"time"
)

func TestRequestFolderName(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	got := RequestFolderName("/tmp/uploads/1700000000_vouchers setembro.csv")
	want := fmt.Sprintf("1700000000_vouchers setembro_%s", today)
	if got != want {
		t.Errorf("RequestFolderName = %q, want %q", got, want)
	}
}

func TestDownloadFileName(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	tests := []struct {
		in   string
		want string
	}{
		{"vouchers.csv", fmt.Sprintf("vouchers_%s.pdf", today)},
		{"lote..csv", fmt.Sprintf("lote._%s.pdf", today)},
		{"relatório.csv", fmt.Sprintf("relatório_%s.pdf", today)},
	}
	for _, tt := range tests {
		if got := DownloadFileName(tt.in); got != tt.want {
			t.Errorf("DownloadFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
