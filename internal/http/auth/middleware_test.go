package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fuelctl/internal/http/auth"
)

type staticVerifier map[string]string

func (s staticVerifier) Verify(raw string) (string, error) {
	subject, ok := s[raw]
	if !ok {
		return "", errors.New("unknown token")
	}

	return subject, nil
}

func TestBearer(t *testing.T) {
	type testCase struct {
		name        string
		header      string
		wantStatus  int
		wantSubject string
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer good", wantStatus: http.StatusOK, wantSubject: "phone"},
		{name: "Missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Token good", wantStatus: http.StatusUnauthorized},
		{name: "Invalid", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string

			h := auth.Bearer(staticVerifier{"good": "phone"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = auth.Subject(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantSubject, gotSubject)
		})
	}
}
