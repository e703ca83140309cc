package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/services"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"input error", &services.InputError{Msg: "no usable rows"}, http.StatusBadRequest},
		{"generation error", &services.GenerationError{Msg: "empty output"}, http.StatusInternalServerError},
		{"font error", &services.FontError{File: "Poppins-Bold.ttf"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), "error") {
				t.Errorf("body has no error field: %s", w.Body.String())
			}
		})
	}
}
