package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIssueAndParseRoundtrip(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, err := svc.IssueJWT("google|42", "a@example.com", "Ada")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "google|42" || claims.Email != "a@example.com" || claims.Name != "Ada" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewAuthService("different-secret")
	if _, err := other.Parse(tok); err == nil {
		t.Error("token signed with another secret should not verify")
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, err := svc.IssueJWT("local|alice", "", "")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}

	var gotSub string
	h := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
	}))

	cases := []struct {
		name    string
		prepare func(r *http.Request)
		status  int
		sub     string
	}{
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+tok)
		}, http.StatusOK, "local|alice"},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
		}, http.StatusOK, "local|alice"},
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotSub = ""
			r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tc.prepare(r)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			if gotSub != tc.sub {
				t.Errorf("sub = %q, want %q", gotSub, tc.sub)
			}
		})
	}
}
