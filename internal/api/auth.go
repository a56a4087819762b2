package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// tokenValidity is the fixed validity window of issued credentials.
const tokenValidity = 12 * time.Hour

const (
	userIdClaim = "user-id"
	roleClaim   = "role"
	expClaim    = "exp"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the verified subject of a credential.
type Identity struct {
	Id   int
	Role string
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)

	return ident, ok
}

// bearerToken extracts the credential from the Authorization header. The
// websocket handshake may carry it as a query parameter instead, since
// browsers cannot set headers on an upgrade request.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer "), nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", ErrNoToken
}

func (s *NutriChatApp) createToken(userId int, role string, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		roleClaim:   role,
		expClaim:    time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

// verifyToken checks the signature and validity window and returns the
// embedded identity. Expiry is distinguished from other failures so the
// log tells them apart, though both surface as the same HTTP outcome.
func (s *NutriChatApp) verifyToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrTokenInvalid
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return Identity{}, fmt.Errorf("%w: missing user id claim", ErrTokenInvalid)
	}

	role, ok := claims[roleClaim].(string)
	if !ok {
		return Identity{}, fmt.Errorf("%w: missing role claim", ErrTokenInvalid)
	}

	return Identity{Id: int(userId), Role: role}, nil
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}
