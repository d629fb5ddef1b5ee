package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/store/memstore"
)

func newColecciones() *Colecciones {
	return NewColecciones(memstore.New(), nil)
}

var (
	_ UsuarioRepository   = (*usuarioRepo)(nil)
	_ UbicacionRepository = (*ubicacionRepo)(nil)
	_ NegocioRepository   = (*negocioRepo)(nil)
	_ CatalogoRepository  = (*catalogoRepo)(nil)
)

func TestUsuarioRepo_FindByCorreo(t *testing.T) {
	repo := NewUsuarioRepository(newColecciones().Usuarios)
	ctx := context.Background()

	u := &model.Usuario{Nombre: "Ana", Correo: " Ana@Example.com "}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := repo.FindByCorreo(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	none, err := repo.FindByCorreo(ctx, "otro@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUbicacionRepo_FiltraPorPadre(t *testing.T) {
	repo := NewUbicacionRepository(newColecciones())
	ctx := context.Background()

	ve := &model.Pais{Nombre: "Venezuela"}
	co := &model.Pais{Nombre: "Colombia"}
	require.NoError(t, repo.CrearPais(ctx, ve))
	require.NoError(t, repo.CrearPais(ctx, co))
	require.NoError(t, repo.CrearEstado(ctx, &model.Estado{Nombre: "Carabobo", PaisID: ve.ID}))
	require.NoError(t, repo.CrearEstado(ctx, &model.Estado{Nombre: "Aragua", PaisID: ve.ID}))
	require.NoError(t, repo.CrearEstado(ctx, &model.Estado{Nombre: "Antioquia", PaisID: co.ID}))

	paises, err := repo.Paises(ctx)
	require.NoError(t, err)
	require.Len(t, paises, 2)
	assert.Equal(t, "Colombia", paises[0].Nombre)

	estados, err := repo.Estados(ctx, ve.ID)
	require.NoError(t, err)
	require.Len(t, estados, 2)
	assert.Equal(t, "Aragua", estados[0].Nombre)
	assert.Equal(t, "Carabobo", estados[1].Nombre)

	todos, err := repo.Estados(ctx, "")
	require.NoError(t, err)
	assert.Len(t, todos, 3)

	n, err := repo.Contar(ctx, model.ColeccionEstados)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNegocioRepo_BuscarPorPrefijo(t *testing.T) {
	repo := NewNegocioRepository(newColecciones().Negocios)
	ctx := context.Background()
	for _, nombre := range []string{"Panaderia Central", "Pan de Oro", "pancho's", "Farmacia"} {
		require.NoError(t, repo.Create(ctx, &model.Negocio{Nombre: nombre}))
	}

	page, err := repo.BuscarPorPrefijo(ctx, "Pan", store.Pagination{})
	require.NoError(t, err)
	var nombres []string
	for _, n := range page.Items {
		nombres = append(nombres, n.Nombre)
	}
	assert.Equal(t, []string{"Pan de Oro", "Panaderia Central"}, nombres, "prefix match is case sensitive")

	page, err = repo.BuscarPorPrefijo(ctx, "Pan", store.Pagination{PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotEmpty(t, page.Cursor)
}

func TestNegocioRepo_ByPropietario(t *testing.T) {
	repo := NewNegocioRepository(newColecciones().Negocios)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Negocio{Nombre: "A", PropietarioID: "u1"}))
	require.NoError(t, repo.Create(ctx, &model.Negocio{Nombre: "B", PropietarioID: "u2"}))

	list, err := repo.ByPropietario(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Nombre)
}

func TestCatalogoRepo_EventosOrdenadosPorFecha(t *testing.T) {
	cols := newColecciones()
	repo := NewCatalogoRepository(cols)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := cols.Eventos.Create(ctx, model.Evento{Nombre: "Cierre", LugarID: "l1", Fecha: base.Add(48 * time.Hour)})
	require.NoError(t, err)
	_, err = cols.Eventos.Create(ctx, model.Evento{Nombre: "Apertura", LugarID: "l1", Fecha: base})
	require.NoError(t, err)
	_, err = cols.Eventos.Create(ctx, model.Evento{Nombre: "Otro lugar", LugarID: "l2", Fecha: base})
	require.NoError(t, err)

	eventos, err := repo.EventosPorLugar(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, eventos, 2)
	assert.Equal(t, "Apertura", eventos[0].Nombre)
	assert.True(t, base.Equal(eventos[0].Fecha))
}
