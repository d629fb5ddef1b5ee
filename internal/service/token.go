package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalido means the caller is not authenticated.
	ErrTokenInvalido = errors.New("token inválido o expirado")
	// ErrVerificacionNoDisponible means the session cannot be decided yet
	// because the revocation store or the identity provider is unreachable.
	ErrVerificacionNoDisponible = errors.New("verificación de sesión no disponible")
)

// Identidad is the verified caller behind a token.
type Identidad struct {
	UsuarioID string
	Correo    string
	Nombre    string
	JTI       string
	Expira    time.Time
}

// TokenVerifier resolves a bearer token into an Identidad.
type TokenVerifier interface {
	Verificar(ctx context.Context, token string) (*Identidad, error)
}

// Claims are the custom claims embedded in every local access token.
type Claims struct {
	UsuarioID string `json:"user_id"`
	Correo    string `json:"correo"`
	Nombre    string `json:"nombre"`
	jwt.RegisteredClaims
}

// ── Local HS256 ──────────────────────────────────────────────────────────────

type jwtVerifier struct {
	secret []byte
	rev    Revocaciones
}

// NewJWTVerifier verifies tokens signed with secret. rev may be nil.
func NewJWTVerifier(secret string, rev Revocaciones) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret), rev: rev}
}

func (v *jwtVerifier) Verificar(ctx context.Context, tokenStr string) (*Identidad, error) {
	claims, err := parseClaims(tokenStr, v.secret)
	if err != nil {
		return nil, err
	}
	if v.rev != nil && claims.ID != "" {
		revocado, err := v.rev.Revocado(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVerificacionNoDisponible, err)
		}
		if revocado {
			return nil, ErrTokenInvalido
		}
	}
	id := &Identidad{
		UsuarioID: claims.UsuarioID,
		Correo:    claims.Correo,
		Nombre:    claims.Nombre,
		JTI:       claims.ID,
	}
	if claims.ExpiresAt != nil {
		id.Expira = claims.ExpiresAt.Time
	}
	return id, nil
}

func parseClaims(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UsuarioID == "" {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}

// ── Firebase ID tokens ───────────────────────────────────────────────────────

// FirebaseAuth is the part of *auth.Client the service uses.
type FirebaseAuth interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
}

type firebaseVerifier struct{ client FirebaseAuth }

func NewFirebaseVerifier(client FirebaseAuth) TokenVerifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verificar(ctx context.Context, idToken string) (*Identidad, error) {
	tok, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenInvalid(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err) {
			return nil, ErrTokenInvalido
		}
		return nil, fmt.Errorf("%w: %v", ErrVerificacionNoDisponible, err)
	}
	id := &Identidad{UsuarioID: tok.UID, Expira: time.Unix(tok.Expires, 0)}
	if s, ok := tok.Claims["email"].(string); ok {
		id.Correo = s
	}
	if s, ok := tok.Claims["name"].(string); ok {
		id.Nombre = s
	}
	return id, nil
}
