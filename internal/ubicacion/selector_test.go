package ubicacion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/preferencias"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/store/memstore"
)

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	repo  repository.UbicacionRepository
	prefs *preferencias.Memoria
	hub   *cambios.Hub

	venezuela, colombia        model.Pais
	aragua, carabobo, antioquia model.Estado
	maracay                    model.Ciudad
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub := cambios.NewHub(16)
	t.Cleanup(hub.Close)
	f := &fixture{
		repo:  repository.NewUbicacionRepository(repository.NewColecciones(memstore.New(), hub)),
		prefs: preferencias.NewMemoria(),
		hub:   hub,
	}
	ctx := context.Background()

	f.venezuela = model.Pais{Nombre: "Venezuela"}
	f.colombia = model.Pais{Nombre: "Colombia"}
	require.NoError(t, f.repo.CrearPais(ctx, &f.venezuela))
	require.NoError(t, f.repo.CrearPais(ctx, &f.colombia))

	f.aragua = model.Estado{Nombre: "Aragua", PaisID: f.venezuela.ID}
	f.carabobo = model.Estado{Nombre: "Carabobo", PaisID: f.venezuela.ID}
	f.antioquia = model.Estado{Nombre: "Antioquia", PaisID: f.colombia.ID}
	require.NoError(t, f.repo.CrearEstado(ctx, &f.aragua))
	require.NoError(t, f.repo.CrearEstado(ctx, &f.carabobo))
	require.NoError(t, f.repo.CrearEstado(ctx, &f.antioquia))

	f.maracay = model.Ciudad{Nombre: "Maracay", EstadoID: f.aragua.ID}
	require.NoError(t, f.repo.CrearCiudad(ctx, &f.maracay))
	return f
}

func (f *fixture) deps() Dependencias {
	return Dependencias{Repo: f.repo, Prefs: f.prefs}
}

func (f *fixture) abrir(t *testing.T) *Selector {
	t.Helper()
	s, err := Abrir(context.Background(), "u1", f.deps())
	require.NoError(t, err)
	t.Cleanup(s.Cerrar)
	return s
}

func aplicar(t *testing.T, s *Selector, evs ...Evento) Vista {
	t.Helper()
	var v Vista
	var err error
	for _, ev := range evs {
		v, err = s.Aplicar(context.Background(), ev)
		require.NoError(t, err, "%T", ev)
	}
	return v
}

func nombresEstados(list []model.Estado) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Nombre
	}
	return out
}

// ── Label ────────────────────────────────────────────────────────────────────

func TestEtiqueta(t *testing.T) {
	paises := []model.Pais{{ID: "ve", Nombre: "Venezuela"}}
	estados := []model.Estado{{ID: "ar", Nombre: "Aragua", PaisID: "ve"}, {ID: "x", Nombre: "Huérfano", PaisID: "nada"}}

	assert.Equal(t, "Turmero (Aragua, Venezuela)", Etiqueta(model.Ciudad{Nombre: "Turmero", EstadoID: "ar"}, estados, paises))
	assert.Equal(t, "Turmero (desconocido, desconocido)", Etiqueta(model.Ciudad{Nombre: "Turmero", EstadoID: "zz"}, estados, paises))
	assert.Equal(t, "Turmero (Huérfano, desconocido)", Etiqueta(model.Ciudad{Nombre: "Turmero", EstadoID: "x"}, estados, paises))
}

// ── Cascade ──────────────────────────────────────────────────────────────────

func TestSeleccionarPais_FiltraEstadosYLimpiaAbajo(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)

	v := aplicar(t, s,
		SeleccionarPais{ID: f.venezuela.ID},
		SeleccionarEstado{ID: f.aragua.ID},
		SeleccionarCiudad{ID: f.maracay.ID},
	)
	assert.Equal(t, Seleccionado, v.Ciudad.Modo)

	v = aplicar(t, s, SeleccionarPais{ID: f.colombia.ID})
	assert.Equal(t, []string{"Antioquia"}, nombresEstados(v.Estados))
	assert.Equal(t, explorando, v.Estado)
	assert.Equal(t, explorando, v.Ciudad)
	assert.Empty(t, v.Ciudades)
	assert.Empty(t, v.Etiqueta)

	v = aplicar(t, s, SeleccionarPais{ID: f.venezuela.ID})
	assert.Equal(t, []string{"Aragua", "Carabobo"}, nombresEstados(v.Estados))
}

func TestSeleccionarEstado_RequierePaisYPertenencia(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)
	ctx := context.Background()

	_, err := s.Aplicar(ctx, SeleccionarEstado{ID: f.aragua.ID})
	var verr *ErrValidacion
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "pais")

	aplicar(t, s, SeleccionarPais{ID: f.venezuela.ID})
	_, err = s.Aplicar(ctx, SeleccionarEstado{ID: f.antioquia.ID})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "estado")
}

func TestCentinelaNuevo(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)

	v := aplicar(t, s, SeleccionarPais{ID: f.venezuela.ID}, SeleccionarEstado{ID: Nuevo})
	assert.Equal(t, Creando, v.Estado.Modo)
	assert.Empty(t, v.Estado.SeleccionID)
	assert.Equal(t, Explorando, v.Ciudad.Modo)

	v = aplicar(t, s, SeleccionarPais{ID: Nuevo})
	assert.Equal(t, Creando, v.Pais.Modo)
	assert.Equal(t, Explorando, v.Estado.Modo)
	assert.Empty(t, v.Estados)
}

func TestCrearNuevo_RequierePadre(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)

	_, err := s.Aplicar(context.Background(), CrearNuevo{Nivel: NivelCiudad})
	var verr *ErrValidacion
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Campos, "estado")
}

// ── Save ─────────────────────────────────────────────────────────────────────

type espia struct {
	repository.UbicacionRepository
	llamadas    []string
	fallaEstado error
}

func (e *espia) CrearPais(ctx context.Context, p *model.Pais) error {
	e.llamadas = append(e.llamadas, "pais")
	return e.UbicacionRepository.CrearPais(ctx, p)
}

func (e *espia) CrearEstado(ctx context.Context, m *model.Estado) error {
	e.llamadas = append(e.llamadas, "estado")
	if e.fallaEstado != nil {
		return e.fallaEstado
	}
	return e.UbicacionRepository.CrearEstado(ctx, m)
}

func (e *espia) CrearCiudad(ctx context.Context, c *model.Ciudad) error {
	e.llamadas = append(e.llamadas, "ciudad")
	return e.UbicacionRepository.CrearCiudad(ctx, c)
}

func TestGuardar_CascadaEnOrden(t *testing.T) {
	f := newFixture(t)
	spy := &espia{UbicacionRepository: f.repo}
	s, err := Abrir(context.Background(), "u1", Dependencias{Repo: spy, Prefs: f.prefs})
	require.NoError(t, err)
	defer s.Cerrar()

	v := aplicar(t, s,
		CrearNuevo{Nivel: NivelPais}, EscribirNombre{Nivel: NivelPais, Nombre: "Chile"},
		CrearNuevo{Nivel: NivelEstado}, EscribirNombre{Nivel: NivelEstado, Nombre: "Valparaíso"},
		CrearNuevo{Nivel: NivelCiudad}, EscribirNombre{Nivel: NivelCiudad, Nombre: " Viña del Mar "},
		Guardar{Nivel: NivelCiudad},
	)
	assert.Equal(t, []string{"pais", "estado", "ciudad"}, spy.llamadas)
	assert.Equal(t, Seleccionado, v.Pais.Modo)
	assert.Equal(t, Seleccionado, v.Estado.Modo)
	require.Equal(t, Seleccionado, v.Ciudad.Modo)
	assert.Equal(t, "Viña del Mar (Valparaíso, Chile)", v.Etiqueta)

	ctx := context.Background()
	ciudad, err := f.repo.Ciudad(ctx, v.Ciudad.SeleccionID)
	require.NoError(t, err)
	require.NotNil(t, ciudad)
	assert.Equal(t, "Viña del Mar", ciudad.Nombre)
	assert.Equal(t, v.Estado.SeleccionID, ciudad.EstadoID)

	estado, err := f.repo.Estado(ctx, ciudad.EstadoID)
	require.NoError(t, err)
	assert.Equal(t, v.Pais.SeleccionID, estado.PaisID)

	recordada, ok, _ := f.prefs.Get(ctx, "u1", ClaveCiudadSeleccionada)
	assert.True(t, ok)
	assert.Equal(t, ciudad.ID, recordada)
}

func TestGuardar_NombreVacioNoPersiste(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)
	ctx := context.Background()

	aplicar(t, s, SeleccionarPais{ID: f.venezuela.ID}, SeleccionarEstado{ID: f.aragua.ID},
		CrearNuevo{Nivel: NivelCiudad}, EscribirNombre{Nivel: NivelCiudad, Nombre: "   "})

	v, err := s.Aplicar(ctx, Guardar{Nivel: NivelCiudad})
	var verr *ErrValidacion
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "El nombre de la ciudad no puede estar vacío.", verr.Campos["ciudad"])
	assert.Equal(t, Creando, v.Ciudad.Modo)

	n, err := f.repo.Contar(ctx, model.ColeccionCiudades)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGuardar_FalloParcialConservaLoCreado(t *testing.T) {
	f := newFixture(t)
	spy := &espia{UbicacionRepository: f.repo, fallaEstado: errors.New("store caido")}
	s, err := Abrir(context.Background(), "u1", Dependencias{Repo: spy, Prefs: f.prefs})
	require.NoError(t, err)
	defer s.Cerrar()

	aplicar(t, s,
		CrearNuevo{Nivel: NivelPais}, EscribirNombre{Nivel: NivelPais, Nombre: "Chile"},
		CrearNuevo{Nivel: NivelEstado}, EscribirNombre{Nivel: NivelEstado, Nombre: "Biobío"},
	)
	v, err := s.Aplicar(context.Background(), Guardar{Nivel: NivelEstado})
	require.Error(t, err)
	assert.Equal(t, Seleccionado, v.Pais.Modo, "created país is kept")
	assert.Equal(t, Creando, v.Estado.Modo)
	assert.Equal(t, "Biobío", v.Estado.NombreNuevo)
}

func TestCancelar(t *testing.T) {
	f := newFixture(t)
	s := f.abrir(t)

	v := aplicar(t, s,
		CrearNuevo{Nivel: NivelPais}, CrearNuevo{Nivel: NivelEstado},
		Cancelar{Nivel: NivelPais},
	)
	assert.Equal(t, explorando, v.Pais)
	assert.Equal(t, explorando, v.Estado)
}

// ── Rehydration ──────────────────────────────────────────────────────────────

func TestEscenarioTurmero(t *testing.T) {
	f := newFixture(t)
	s, err := Abrir(context.Background(), "u1", f.deps())
	require.NoError(t, err)

	v := aplicar(t, s,
		SeleccionarPais{ID: f.venezuela.ID},
		SeleccionarEstado{ID: f.aragua.ID},
		CrearNuevo{Nivel: NivelCiudad},
		EscribirNombre{Nivel: NivelCiudad, Nombre: "Turmero"},
		Guardar{Nivel: NivelCiudad},
	)
	assert.Equal(t, "Turmero (Aragua, Venezuela)", v.Etiqueta)
	turmeroID := v.Ciudad.SeleccionID
	s.Cerrar()

	recargado, err := Abrir(context.Background(), "u1", f.deps())
	require.NoError(t, err)
	defer recargado.Cerrar()

	got := recargado.Vista()
	want := [3]Etapa{
		{Modo: Seleccionado, SeleccionID: f.venezuela.ID},
		{Modo: Seleccionado, SeleccionID: f.aragua.ID},
		{Modo: Seleccionado, SeleccionID: turmeroID},
	}
	if diff := cmp.Diff(want, [3]Etapa{got.Pais, got.Estado, got.Ciudad}); diff != "" {
		t.Errorf("rehidratación (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Turmero (Aragua, Venezuela)", got.Etiqueta)
	require.NotNil(t, recargado.CiudadSeleccionada())
	assert.Equal(t, "Turmero", recargado.CiudadSeleccionada().Nombre)
}

func TestRehidratar_IDObsoletoReinicia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.prefs.Set(ctx, "u1", ClaveCiudadSeleccionada, "borrada"))

	s := f.abrir(t)
	v := s.Vista()
	assert.Equal(t, explorando, v.Pais)
	assert.Equal(t, explorando, v.Ciudad)

	_, ok, _ := f.prefs.Get(ctx, "u1", ClaveCiudadSeleccionada)
	assert.False(t, ok, "stale id is forgotten")
}

func TestRehidratar_MigraClaveLegacy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.prefs.Set(ctx, "u1", ClaveCiudadLegacy, "Maracay"))

	s := f.abrir(t)
	v := s.Vista()
	assert.Equal(t, f.maracay.ID, v.Ciudad.SeleccionID)
	assert.Equal(t, "Maracay (Aragua, Venezuela)", v.Etiqueta)

	id, ok, _ := f.prefs.Get(ctx, "u1", ClaveCiudadSeleccionada)
	assert.True(t, ok)
	assert.Equal(t, f.maracay.ID, id)
	_, ok, _ = f.prefs.Get(ctx, "u1", ClaveCiudadLegacy)
	assert.False(t, ok)
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func TestAplicar_EventoDesconocidoYCerrado(t *testing.T) {
	f := newFixture(t)
	s, err := Abrir(context.Background(), "u1", f.deps())
	require.NoError(t, err)

	_, err = s.Aplicar(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEventoDesconocido)

	s.Cerrar()
	s.Cerrar()
	_, err = s.Aplicar(context.Background(), SeleccionarPais{ID: f.venezuela.ID})
	assert.ErrorIs(t, err, ErrCerrado)
}

func TestSelectorVivo_RefrescaYNoFiltraGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	deps := f.deps()
	deps.Cambios = f.hub
	s, err := Abrir(context.Background(), "u1", deps)
	require.NoError(t, err)
	assert.Equal(t, 1, f.hub.Len())

	vistas, stop := s.Observar()
	defer stop()
	<-vistas // current snapshot

	peru := model.Pais{Nombre: "Perú"}
	require.NoError(t, f.repo.CrearPais(context.Background(), &peru))

	require.Eventually(t, func() bool {
		for _, p := range s.Vista().Paises {
			if p.ID == peru.ID {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	s.Cerrar()
	assert.Equal(t, 0, f.hub.Len(), "subscription released on close")
	for range vistas {
		// drained until Cerrar closes the channel
	}
}

func TestSelectorVivo_SeleccionBorradaSeLimpia(t *testing.T) {
	f := newFixture(t)
	deps := f.deps()
	deps.Cambios = f.hub
	s, err := Abrir(context.Background(), "u1", deps)
	require.NoError(t, err)
	defer s.Cerrar()

	aplicar(t, s, SeleccionarPais{ID: f.colombia.ID}, SeleccionarEstado{ID: f.antioquia.ID})
	require.NoError(t, f.repo.Eliminar(context.Background(), model.ColeccionEstados, f.antioquia.ID))

	require.Eventually(t, func() bool {
		return s.Vista().Estado.Modo == Explorando
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, Seleccionado, s.Vista().Pais.Modo)
}

// ── Wire events ──────────────────────────────────────────────────────────────

func TestParsearEvento(t *testing.T) {
	cases := []struct {
		tipo   string
		nivel  Nivel
		id     string
		nombre string
		want   Evento
	}{
		{TipoSeleccionar, NivelPais, "p", "", SeleccionarPais{ID: "p"}},
		{TipoSeleccionar, NivelEstado, "e", "", SeleccionarEstado{ID: "e"}},
		{TipoSeleccionar, NivelCiudad, "c", "", SeleccionarCiudad{ID: "c"}},
		{TipoCrearNuevo, NivelEstado, "", "", CrearNuevo{Nivel: NivelEstado}},
		{TipoEscribirNombre, NivelCiudad, "", "Turmero", EscribirNombre{Nivel: NivelCiudad, Nombre: "Turmero"}},
		{TipoCancelar, NivelPais, "", "", Cancelar{Nivel: NivelPais}},
		{TipoGuardar, NivelCiudad, "", "", Guardar{Nivel: NivelCiudad}},
	}
	for _, c := range cases {
		got, err := ParsearEvento(c.tipo, c.nivel, c.id, c.nombre)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}

	_, err := ParsearEvento("borrar", NivelPais, "", "")
	assert.ErrorIs(t, err, ErrEventoDesconocido)
	_, err = ParsearEvento(TipoGuardar, "barrio", "", "")
	assert.ErrorIs(t, err, ErrEventoDesconocido)
}
