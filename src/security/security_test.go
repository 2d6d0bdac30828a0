package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"signalbridge/src/auth"
)

func TestHashAndVerifyToken(t *testing.T) {
	token := GenerateToken()
	assert.Len(t, token, 64)

	hash, err := HashToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	assert.True(t, VerifyToken(hash, token))
	assert.False(t, VerifyToken(hash, "wrong"))
	assert.False(t, VerifyToken("", token))
	assert.False(t, VerifyToken(hash, ""))

	_, err = HashToken("  ")
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestIntakeAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	var (
		gotSource string
		gotAuth   bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSource, _ = auth.GetSourceFromContext(r.Context())
		gotAuth = auth.IsAuthenticated(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		hash       string
		token      string
		source     string
		wantStatus int
		wantAuth   bool
	}{
		{name: "open when no hash", hash: "", source: "feed", wantStatus: http.StatusNoContent},
		{name: "valid token", hash: string(hash), token: "secret", source: "tv", wantStatus: http.StatusNoContent, wantAuth: true},
		{name: "missing token", hash: string(hash), wantStatus: http.StatusUnauthorized},
		{name: "wrong token", hash: string(hash), token: "nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSource, gotAuth = "", false

			req := httptest.NewRequest(http.MethodPost, "/signals", nil)
			if tt.token != "" {
				req.Header.Set(TokenHeader, tt.token)
			}
			if tt.source != "" {
				req.Header.Set(SourceHeader, tt.source)
			}
			rr := httptest.NewRecorder()

			IntakeAuth(tt.hash)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAuth, gotAuth)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, tt.source, gotSource)
			}
		})
	}
}
