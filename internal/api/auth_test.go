package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/jmorales-dev/nutrichat/internal/config"
	"github.com/jmorales-dev/nutrichat/internal/database"
	"github.com/jmorales-dev/nutrichat/internal/server"
	"github.com/jmorales-dev/nutrichat/internal/stats"
	"github.com/jmorales-dev/nutrichat/internal/testutil"
	"github.com/jmorales-dev/nutrichat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSigningSecret = "c29tZV9zZWNyZXQ="

func newTestApp(t *testing.T) (*NutriChatApp, *database.MockNutriChatRepository, *stats.MockStatsUpdater) {
	db := &database.MockNutriChatRepository{}
	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Times(4)

	cs, err := server.NewChatServer(testutil.TestLogger(t), server.NewRegistry(), su)
	assert.NoError(t, err, "expected no error creating chat server")

	cfg, err := config.NewConfig(
		"localhost:3000",
		"host=localhost user=postgres dbname=postgres sslmode=disable",
		testSigningSecret,
		[]string{"http://localhost:3000"},
		t.TempDir(),
	)
	assert.NoError(t, err, "expected no error creating config")

	app := NewNutriChatApp(http.NewServeMux(), testutil.TestLogger(t), cs, db, su, cfg)

	return app, db, su
}

func TestCreateVerifyToken(t *testing.T) {
	s, _, _ := newTestApp(t)

	token, err := s.createToken(1, types.RolePaciente, time.Minute)
	assert.NoError(t, err, "expected no error creating token")
	assert.NotEmpty(t, token, "expected a signed token")

	ident, err := s.verifyToken(token)
	assert.NoError(t, err, "expected token to verify")
	assert.Equal(t, Identity{Id: 1, Role: types.RolePaciente}, ident, "expected identity to round-trip")
}

func TestVerifyToken_Expired(t *testing.T) {
	s, _, _ := newTestApp(t)

	token, err := s.createToken(1, types.RolePaciente, -time.Minute)
	assert.NoError(t, err, "expected no error creating token")

	_, err = s.verifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired, "expected expiry to be reported")
}

func TestVerifyToken_WrongKey(t *testing.T) {
	s, _, _ := newTestApp(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: 1,
		roleClaim:   types.RolePaciente,
		expClaim:    time.Now().Add(time.Minute).Unix(),
	})
	tokenString, err := forged.SignedString([]byte("some_other_secret"))
	assert.NoError(t, err, "expected no error signing token")

	_, err = s.verifyToken(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid, "expected a foreign signature to be rejected")
}

func TestVerifyToken_MissingClaims(t *testing.T) {
	s, _, _ := newTestApp(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		expClaim: time.Now().Add(time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(s.signingKey)
	assert.NoError(t, err, "expected no error signing token")

	_, err = s.verifyToken(tokenString)
	assert.ErrorIs(t, err, ErrTokenInvalid, "expected missing claims to be rejected")
}

func TestVerifyToken_Garbage(t *testing.T) {
	s, _, _ := newTestApp(t)

	_, err := s.verifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid, "expected malformed token to be rejected")
}

func Test_bearerToken(t *testing.T) {
	tcases := []struct {
		name     string
		header   string
		query    string
		expected string
		err      error
	}{
		{
			name:     "authorization header",
			header:   "Bearer some-token",
			expected: "some-token",
		},
		{
			name:     "query parameter fallback",
			query:    "?token=some-token",
			expected: "some-token",
		},
		{
			name:     "header wins over query",
			header:   "Bearer header-token",
			query:    "?token=query-token",
			expected: "header-token",
		},
		{
			name: "no credential",
			err:  ErrNoToken,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/verify-token"+tc.query, nil)
			assert.NoError(t, err, "expected no error creating request")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			token, err := bearerToken(req)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err, "expected missing credential error")
				return
			}
			assert.NoError(t, err, "expected no error extracting token")
			assert.Equal(t, tc.expected, token, "expected extracted token to match")
		})
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFrom(ctx)
	assert.False(t, ok, "expected no identity on a fresh context")

	ident := Identity{Id: 4, Role: types.RoleNutricionista}
	ctx = WithIdentity(ctx, ident)

	got, ok := IdentityFrom(ctx)
	assert.True(t, ok, "expected identity to be present")
	assert.Equal(t, ident, got, "expected stored identity to match")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("hunter2")
	assert.NoError(t, err, "expected no error hashing password")
	assert.NotEqual(t, "hunter2", hash, "expected password to be hashed")

	assert.True(t, verifyPassword(hash, "hunter2"), "expected matching password to verify")
	assert.False(t, verifyPassword(hash, "hunter3"), "expected wrong password to fail")
}
