package authenticate

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"MarketChat/entity"
	"MarketChat/internal/lib/api/cont"
)

type staticAuth struct{}

func (staticAuth) Authenticate(token string) (entity.Party, error) {
	if token != "good" {
		return entity.Party{}, entity.Unauthenticated("bad token")
	}
	return entity.Party{ID: "u1", Type: entity.SenderUser}, nil
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer abc":   "abc",
		"Bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen entity.Party
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = cont.GetParty(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := New(log, staticAuth{})(next)

	tests := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("%q: status = %d, want %d", tt.header, rec.Code, tt.status)
		}
	}
	if seen.ID != "u1" || seen.Type != entity.SenderUser {
		t.Fatalf("party in context = %+v", seen)
	}
}
