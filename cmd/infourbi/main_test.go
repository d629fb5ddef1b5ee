package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store/memstore"
)

const semilla = `
paises:
  - nombre: Venezuela
    estados:
      - nombre: Aragua
        ciudades: [Turmero, Maracay]
      - nombre: Carabobo
        ciudades: [Valencia]
  - nombre: Chile
    estados:
      - nombre: Valparaíso
        ciudades: [Viña del Mar]
`

func escribirSemilla(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ubicaciones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(semilla), 0o600))
	return path
}

func TestHashCmd(t *testing.T) {
	var out bytes.Buffer
	hashCmd.SetOut(&out)
	require.NoError(t, hashCmd.RunE(hashCmd, []string{"secreto1"}))

	h := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("secreto1")))
}

func TestLeerArbol(t *testing.T) {
	a, err := leerArbol(escribirSemilla(t))
	require.NoError(t, err)
	require.Len(t, a.Paises, 2)
	assert.Equal(t, "Aragua", a.Paises[0].Estados[0].Nombre)
	assert.Equal(t, []string{"Turmero", "Maracay"}, a.Paises[0].Estados[0].Ciudades)

	_, err = leerArbol(filepath.Join(t.TempDir(), "no-existe.yaml"))
	assert.Error(t, err)
}

func TestSembrar_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUbicacionRepository(repository.NewColecciones(memstore.New(), nil))
	svc := service.NewUbicacionService(repo)

	a, err := leerArbol(escribirSemilla(t))
	require.NoError(t, err)

	n, err := sembrar(ctx, svc, a)
	require.NoError(t, err)
	assert.Equal(t, 2+3+4, n)

	// second run reuses everything, names compared case-insensitively
	a.Paises[0].Nombre = " venezuela "
	n, err = sembrar(ctx, svc, a)
	require.NoError(t, err)
	assert.Zero(t, n)

	paises, err := svc.Paises(ctx)
	require.NoError(t, err)
	require.Len(t, paises, 2)

	var turmero string
	for _, p := range paises {
		estados, err := svc.Estados(ctx, p.ID)
		require.NoError(t, err)
		for _, e := range estados {
			ciudades, err := svc.Ciudades(ctx, e.ID)
			require.NoError(t, err)
			for _, c := range ciudades {
				if c.Nombre == "Turmero" {
					turmero = c.ID
				}
			}
		}
	}
	require.NotEmpty(t, turmero)
	et, err := svc.Etiqueta(ctx, turmero)
	require.NoError(t, err)
	assert.Equal(t, "Turmero (Aragua, Venezuela)", et.Etiqueta)
}

func TestCrearUsuario(t *testing.T) {
	ctx := context.Background()
	backend := memstore.New()
	cfg := &config.Config{JWTSecret: "secreto", JWTExpirationHours: 1, AuthProvider: config.AuthLocal}

	var out bytes.Buffer
	req := dto.RegistroRequest{Correo: "Ana@Example.com", Password: "secreto1"}
	require.NoError(t, crearUsuario(ctx, cfg, backend, req, &out))
	assert.Contains(t, out.String(), "ana@example.com")

	err := crearUsuario(ctx, cfg, backend, req, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), service.CodigoEmailEnUso)

	err = crearUsuario(ctx, cfg, backend, dto.RegistroRequest{Correo: "b@example.com", Password: "123"}, &out)
	assert.Error(t, err)

	// the account signs in
	cols := repository.NewColecciones(backend, nil)
	svc := service.NewAuthService(repository.NewUsuarioRepository(cols.Usuarios), cfg, service.AuthDeps{})
	resp, err := svc.Login(ctx, dto.LoginRequest{Correo: "ana@example.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, "Ana@Example.com", resp.Usuario.Nombre)
}

type genFijo struct {
	respuesta string
	err       error
}

func (g genFijo) Generar(context.Context, string) (string, error) { return g.respuesta, g.err }

func TestPreguntar(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, preguntar(cmd, infra.NewAsistente(genFijo{respuesta: "hola"}, nil), "¿qué tal?"))
	assert.Equal(t, "hola\n", out.String())

	err := preguntar(cmd, infra.NewAsistente(genFijo{err: errors.New("caído")}, nil), "¿qué tal?")
	assert.Error(t, err)
}
