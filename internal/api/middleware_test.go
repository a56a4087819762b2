package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmorales-dev/nutrichat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	s, _, _ := newTestApp(t)

	validToken, err := s.createToken(1, types.RolePaciente, time.Minute)
	assert.NoError(t, err, "expected no error creating token")

	expiredToken, err := s.createToken(1, types.RolePaciente, -time.Minute)
	assert.NoError(t, err, "expected no error creating token")

	tcases := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectIdentity bool
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectIdentity: true,
		},
		{
			name:           "missing token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			var gotIdentity bool
			handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
				_, gotIdentity = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req, err := http.NewRequest(http.MethodGet, "/verify-token", nil)
			assert.NoError(t, err, "expected no error creating request")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "expected status code to match")
			assert.Equal(t, tc.expectIdentity, gotIdentity, "expected identity propagation to match")
			if tc.expectIdentity {
				assert.NotEmpty(t, rr.Header().Get("Cache-Control"), "expected authenticated responses to be uncacheable")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	s, _, _ := newTestApp(t)

	tcases := []struct {
		name           string
		identity       *Identity
		expectedStatus int
	}{
		{
			name:           "matching role",
			identity:       &Identity{Id: 1, Role: types.RoleNutricionista},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong role",
			identity:       &Identity{Id: 2, Role: types.RolePaciente},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no identity",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			handler := s.requireRole(types.RoleNutricionista, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req, err := http.NewRequest(http.MethodGet, "/users", nil)
			assert.NoError(t, err, "expected no error creating request")
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.identity))
			}

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "expected status code to match")
		})
	}
}

func TestErrorHandler(t *testing.T) {
	s, _, _ := newTestApp(t)

	handler := s.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	assert.NoError(t, err, "expected no error creating request")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected panic to surface as 500")
	assert.Equal(t, "close", rr.Header().Get("Connection"), "expected connection to be closed")
}
