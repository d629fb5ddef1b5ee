package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/negocio"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/store/memstore"
)

func newNegocioService(t *testing.T) (NegocioService, *repository.Colecciones) {
	t.Helper()
	cols := repository.NewColecciones(memstore.New(), nil)
	svc := NewNegocioService(repository.NewNegocioRepository(cols.Negocios), repository.NewCatalogoRepository(cols))
	return svc, cols
}

func crearNegocio(t *testing.T, svc NegocioService, nombre string) model.Negocio {
	t.Helper()
	n, err := svc.Crear(context.Background(), dto.NegocioRequest{Nombre: nombre, Whatsapp: "+58414"}, "u1")
	require.NoError(t, err)
	return n
}

func TestNegocio_CrearYObtener(t *testing.T) {
	svc, _ := newNegocioService(t)
	ctx := context.Background()

	n := crearNegocio(t, svc, "Panadería Sol")
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "u1", n.PropietarioID)

	got, err := svc.Obtener(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Panadería Sol", got.Nombre)
	assert.NotNil(t, got.Administradores)

	_, err = svc.Obtener(ctx, "nope")
	assert.ErrorIs(t, err, ErrNoEncontrado)

	_, err = svc.Crear(ctx, dto.NegocioRequest{Nombre: "   "}, "u1")
	assert.ErrorIs(t, err, negocio.ErrNombreVacio)
}

func TestNegocio_ListarConPrefijo(t *testing.T) {
	svc, _ := newNegocioService(t)
	ctx := context.Background()
	for _, nombre := range []string{"Pizzería Roma", "Panadería Sol", "Barbería Max", "pizza chica"} {
		crearNegocio(t, svc, nombre)
	}

	page, err := svc.Listar(ctx, "P", store.Pagination{})
	require.NoError(t, err)
	var nombres []string
	for _, n := range page.Items {
		nombres = append(nombres, n.Nombre)
	}
	assert.Equal(t, []string{"Panadería Sol", "Pizzería Roma"}, nombres)

	page, err = svc.Listar(ctx, "Zeta", store.Pagination{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	first, err := svc.Listar(ctx, "", store.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)
	rest, err := svc.Listar(ctx, "", store.Pagination{PageSize: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 2)
}

func TestNegocio_EditarFormulario(t *testing.T) {
	svc, _ := newNegocioService(t)
	ctx := context.Background()
	n := crearNegocio(t, svc, "Café Lento")

	got, err := svc.EditarFormulario(ctx, n.ID, dto.FormularioRequest{Cambios: []dto.CambioRequest{
		{Campo: "administradores", Valor: "ana, luis,, "},
		{Campo: "coordenadas.lat", Valor: "10.25"},
		{Campo: "web", Valor: "https://cafe.example"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "luis"}, got.Administradores)

	stored, err := svc.Obtener(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.25, stored.Coordenadas.Lat)
	assert.Equal(t, "https://cafe.example", stored.Web)
	assert.Equal(t, "+58414", stored.Whatsapp, "untouched fields are kept")

	_, err = svc.EditarFormulario(ctx, n.ID, dto.FormularioRequest{Cambios: []dto.CambioRequest{{Campo: "nombre", Valor: " "}}})
	assert.ErrorIs(t, err, negocio.ErrNombreVacio)

	_, err = svc.EditarFormulario(ctx, n.ID, dto.FormularioRequest{Cambios: []dto.CambioRequest{{Campo: "rating", Valor: "5"}}})
	assert.ErrorIs(t, err, negocio.ErrCambioDesconocido)

	_, err = svc.EditarFormulario(ctx, "nope", dto.FormularioRequest{Cambios: []dto.CambioRequest{{Campo: "web", Valor: "x"}}})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestNegocio_ActualizarReemplaza(t *testing.T) {
	svc, _ := newNegocioService(t)
	ctx := context.Background()
	n, err := svc.Crear(ctx, dto.NegocioRequest{Nombre: "Kiosko", Web: "https://k.example", Instagram: "@k"}, "u1")
	require.NoError(t, err)

	_, err = svc.Actualizar(ctx, n.ID, dto.NegocioRequest{Nombre: "Kiosko 2"})
	require.NoError(t, err)

	got, err := svc.Obtener(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kiosko 2", got.Nombre)
	assert.Empty(t, got.Web)
	assert.Empty(t, got.Instagram)
	assert.Equal(t, "u1", got.PropietarioID)
}

func TestNegocio_EliminarDosVeces(t *testing.T) {
	svc, _ := newNegocioService(t)
	ctx := context.Background()
	n := crearNegocio(t, svc, "Efímero")

	require.NoError(t, svc.Eliminar(ctx, n.ID))
	require.NoError(t, svc.Eliminar(ctx, n.ID))
	_, err := svc.Obtener(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestNegocio_FichaYCatalogo(t *testing.T) {
	svc, cols := newNegocioService(t)
	ctx := context.Background()
	n := crearNegocio(t, svc, "Heladería")

	ficha, err := svc.Ficha(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, ficha.Lineas, 15)
	assert.Equal(t, "Nombre", ficha.Lineas[0].Etiqueta)
	assert.Equal(t, "Heladería", ficha.Lineas[0].Valor)

	_, err = cols.Lugares.Create(ctx, model.Lugar{Nombre: "Local 1", NegocioID: n.ID})
	require.NoError(t, err)

	lugares, err := svc.Lugares(ctx, n.ID)
	require.NoError(t, err)
	assert.Len(t, lugares, 1)

	productos, err := svc.Productos(ctx, n.ID)
	require.NoError(t, err)
	assert.NotNil(t, productos)
	assert.Empty(t, productos)

	propios, err := svc.DePropietario(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, propios, 1)
}

func TestResumen_Conteos(t *testing.T) {
	svc, cols := newNegocioService(t)
	crearNegocio(t, svc, "Uno")
	crearNegocio(t, svc, "Dos")
	_, err := cols.Paises.Create(context.Background(), model.Pais{Nombre: "Venezuela"})
	require.NoError(t, err)

	conteos, err := NewResumenService(cols).Conteos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, conteos[model.ColeccionNegocios])
	assert.Equal(t, 1, conteos[model.ColeccionPaises])
	assert.Equal(t, 0, conteos[model.ColeccionUsuarios])
	assert.Len(t, conteos, 8)
}

func TestResumen_ConteosFalla(t *testing.T) {
	b := memstore.New()
	cols := repository.NewColecciones(b, nil)
	b.SetError(assert.AnError)

	_, err := NewResumenService(cols).Conteos(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, err, store.ErrFailed)
}
