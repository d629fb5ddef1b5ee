package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/repository"
)

// BcryptCost is the cost used for every stored password hash.
const BcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Verificar(ctx context.Context, token string) (*Identidad, error)
	Usuario(ctx context.Context, id string) (*dto.UsuarioResponse, error)
}

// Bienvenida queues the welcome email of a new user.
type Bienvenida interface {
	EnqueueBienvenida(ctx context.Context, nombre, correo string) error
}

// AuthDeps are the optional collaborators of the auth service. Firebase is
// set only with AUTH_PROVIDER=firebase.
type AuthDeps struct {
	Revocaciones Revocaciones
	Bienvenida   Bienvenida
	Firebase     FirebaseAuth
}

type authService struct {
	repo     repository.UsuarioRepository
	cfg      *config.Config
	deps     AuthDeps
	verifier TokenVerifier
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, deps AuthDeps) AuthService {
	s := &authService{repo: repo, cfg: cfg, deps: deps}
	if deps.Firebase != nil {
		s.verifier = NewFirebaseVerifier(deps.Firebase)
	} else {
		s.verifier = NewJWTVerifier(cfg.JWTSecret, deps.Revocaciones)
	}
	return s
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if s.deps.Firebase != nil {
		// password sign-in happens client-side against Firebase
		return nil, authErr(CodigoOperacionNoPermitida, nil)
	}
	correo := strings.TrimSpace(req.Correo)
	if !correoValido(correo) {
		return nil, authErr(CodigoEmailInvalido, nil)
	}

	user, err := s.repo.FindByCorreo(ctx, correo)
	if err != nil {
		return nil, authErr(CodigoFalloDeRed, err)
	}
	if user == nil {
		return nil, authErr(CodigoUsuarioNoEncontrado, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, authErr(CodigoPasswordIncorrecto, nil)
	}
	return s.respuesta(user)
}

// Registrar creates an account, queues the welcome email and signs the user in.
func (s *authService) Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error) {
	correo := strings.ToLower(strings.TrimSpace(req.Correo))
	if !correoValido(correo) {
		return nil, authErr(CodigoEmailInvalido, nil)
	}

	existente, err := s.repo.FindByCorreo(ctx, correo)
	if err != nil {
		return nil, authErr(CodigoFalloDeRed, err)
	}
	if existente != nil {
		return nil, authErr(CodigoEmailEnUso, nil)
	}

	user := &model.Usuario{Nombre: strings.TrimSpace(req.Nombre), Correo: correo}
	if s.deps.Firebase != nil {
		rec, err := s.deps.Firebase.CreateUser(ctx, (&auth.UserToCreate{}).
			Email(correo).Password(req.Password).DisplayName(user.Nombre))
		if err != nil {
			if auth.IsEmailAlreadyExists(err) {
				return nil, authErr(CodigoEmailEnUso, err)
			}
			return nil, authErr(CodigoFalloDeRed, err)
		}
		log.Info().Str("firebase_uid", rec.UID).Str("correo", correo).Msg("usuario creado en firebase")
	} else {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, authErr(CodigoFalloDeRed, err)
	}

	if s.deps.Bienvenida != nil {
		if err := s.deps.Bienvenida.EnqueueBienvenida(ctx, user.Nombre, user.Correo); err != nil {
			log.Warn().Err(err).Str("usuario_id", user.ID).Msg("no se pudo encolar el correo de bienvenida")
		}
	}

	if s.deps.Firebase != nil {
		resp := &dto.LoginResponse{TokenType: "bearer", Usuario: usuarioResponse(user)}
		return resp, nil
	}
	return s.respuesta(user)
}

// Logout revokes the token until it would have expired. An invalid token is
// already logged out.
func (s *authService) Logout(ctx context.Context, token string) error {
	id, err := s.verifier.Verificar(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenInvalido) {
			return nil
		}
		return authErr(CodigoFalloDeRed, err)
	}
	if s.deps.Firebase != nil {
		if err := s.deps.Firebase.RevokeRefreshTokens(ctx, id.UsuarioID); err != nil {
			return authErr(CodigoFalloDeRed, err)
		}
		return nil
	}
	if s.deps.Revocaciones == nil || id.JTI == "" {
		return nil
	}
	if err := s.deps.Revocaciones.Revocar(ctx, id.JTI, id.Expira); err != nil {
		return authErr(CodigoFalloDeRed, err)
	}
	return nil
}

func (s *authService) Verificar(ctx context.Context, token string) (*Identidad, error) {
	return s.verifier.Verificar(ctx, token)
}

func (s *authService) Usuario(ctx context.Context, id string) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNoEncontrado
	}
	resp := usuarioResponse(u)
	return &resp, nil
}

func (s *authService) respuesta(user *model.Usuario) (*dto.LoginResponse, error) {
	horas := s.cfg.JWTExpirationHours
	if horas <= 0 {
		horas = 8
	}
	token, err := GenerateToken(user, s.cfg.JWTSecret, time.Duration(horas)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   horas * 3600,
		Usuario:     usuarioResponse(user),
	}, nil
}

// GenerateToken signs an HS256 access token with a fresh jti.
func GenerateToken(user *model.Usuario, secret string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UsuarioID: user.ID,
		Correo:    user.Correo,
		Nombre:    user.Nombre,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(hash), err
}

func usuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{ID: u.ID, Nombre: u.Nombre, Correo: u.Correo}
}

func correoValido(correo string) bool {
	local, dominio, ok := strings.Cut(correo, "@")
	return ok && local != "" && strings.Contains(dominio, ".") && !strings.ContainsAny(correo, " \t")
}
