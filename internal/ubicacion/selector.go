package ubicacion

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/preferencias"
)

// Lector reads the hierarchy lists. An empty parent id lists everything.
type Lector interface {
	Paises(ctx context.Context) ([]model.Pais, error)
	Estados(ctx context.Context, paisID string) ([]model.Estado, error)
	Ciudades(ctx context.Context, estadoID string) ([]model.Ciudad, error)
}

// Repositorio is what a Selector needs from the store.
type Repositorio interface {
	Lector
	Creador
}

// Suscriptor is the change feed a live selector listens to.
type Suscriptor interface {
	Subscribe(colecciones ...string) *cambios.Suscripcion
}

// Dependencias are injected into every selector. Cambios may be nil, in
// which case lists are only refetched after the selector's own saves.
type Dependencias struct {
	Repo    Repositorio
	Prefs   preferencias.Store
	Cambios Suscriptor
}

// Vista is a snapshot of a selector. Estados and Ciudades hold only the
// candidates under the current parent selection.
type Vista struct {
	Pais     Etapa          `json:"pais"`
	Estado   Etapa          `json:"estado"`
	Ciudad   Etapa          `json:"ciudad"`
	Paises   []model.Pais   `json:"paises"`
	Estados  []model.Estado `json:"estados"`
	Ciudades []model.Ciudad `json:"ciudades"`
	Etiqueta string         `json:"etiqueta,omitempty"`
}

// Selector is one user's cascading location selector. It owns a change
// subscription and a goroutine from Abrir until Cerrar.
type Selector struct {
	usuarioID string
	deps      Dependencias

	mu       sync.Mutex
	etapas   [3]Etapa
	paises   []model.Pais
	estados  []model.Estado
	ciudades []model.Ciudad
	cerrado  bool

	obsMu        sync.Mutex
	observadores map[*observador]struct{}

	sub       *cambios.Suscripcion
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type observador struct {
	ch   chan Vista
	once sync.Once
}

func (o *observador) cerrar() { o.once.Do(func() { close(o.ch) }) }

// Abrir loads the lists, restores the remembered ciudad and, when a change
// feed is configured, starts following it. The caller must call Cerrar.
func Abrir(ctx context.Context, usuarioID string, deps Dependencias) (*Selector, error) {
	s := &Selector{
		usuarioID:    usuarioID,
		deps:         deps,
		etapas:       [3]Etapa{explorando, explorando, explorando},
		observadores: make(map[*observador]struct{}),
		done:         make(chan struct{}),
	}
	// subscribe before loading so a change in between still triggers a refetch
	if deps.Cambios != nil {
		s.sub = deps.Cambios.Subscribe(model.ColeccionPaises, model.ColeccionEstados, model.ColeccionCiudades)
	}

	if err := s.recargar(ctx); err != nil {
		close(s.done)
		s.Cerrar()
		return nil, err
	}
	s.Rehidratar(ctx)

	if s.sub == nil {
		close(s.done)
		return s, nil
	}
	wctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.vigilar(wctx)
	return s, nil
}

// Cerrar stops the goroutine, closes the subscription and every observer
// channel. Safe to call more than once.
func (s *Selector) Cerrar() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.cerrado = true
		s.mu.Unlock()

		if s.cancel != nil {
			s.cancel()
		}
		if s.sub != nil {
			s.sub.Close()
		}
		<-s.done

		s.obsMu.Lock()
		for o := range s.observadores {
			o.cerrar()
		}
		s.observadores = map[*observador]struct{}{}
		s.obsMu.Unlock()
	})
}

// Vista returns the current snapshot.
func (s *Selector) Vista() Vista {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vistaLocked()
}

// CiudadSeleccionada returns the selected ciudad, or nil.
func (s *Selector) CiudadSeleccionada() *model.Ciudad {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.etapas[2].Modo != Seleccionado {
		return nil
	}
	if c := buscarCiudad(s.ciudades, s.etapas[2].SeleccionID); c != nil {
		cp := *c
		return &cp
	}
	return nil
}

// Observar streams a snapshot after every change, starting with the current
// one. Slow readers miss intermediate snapshots. The returned func stops
// the stream; the channel is also closed by Cerrar.
func (s *Selector) Observar() (<-chan Vista, func()) {
	o := &observador{ch: make(chan Vista, 4)}
	o.ch <- s.Vista()

	s.obsMu.Lock()
	s.mu.Lock()
	cerrado := s.cerrado
	s.mu.Unlock()
	if cerrado {
		o.cerrar()
	} else {
		s.observadores[o] = struct{}{}
	}
	s.obsMu.Unlock()

	return o.ch, func() {
		s.obsMu.Lock()
		delete(s.observadores, o)
		s.obsMu.Unlock()
		o.cerrar()
	}
}

// Aplicar applies one event and returns the resulting snapshot. On error the
// snapshot reflects whatever part of the event took effect (a failed cascade
// save keeps the levels that were created).
func (s *Selector) Aplicar(ctx context.Context, ev Evento) (Vista, error) {
	s.mu.Lock()
	if s.cerrado {
		s.mu.Unlock()
		return Vista{}, ErrCerrado
	}

	var err error
	switch e := ev.(type) {
	case SeleccionarPais:
		err = s.seleccionarPais(e.ID)
	case SeleccionarEstado:
		err = s.seleccionarEstado(e.ID)
	case SeleccionarCiudad:
		err = s.seleccionarCiudad(ctx, e.ID)
	case CrearNuevo:
		err = s.crearNuevo(e.Nivel)
	case EscribirNombre:
		err = s.escribirNombre(e.Nivel, e.Nombre)
	case Cancelar:
		err = s.cancelar(e.Nivel)
	case Guardar:
		err = s.guardar(ctx, e.Nivel)
	default:
		err = ErrEventoDesconocido
	}
	v := s.vistaLocked()
	s.mu.Unlock()

	s.notificar(v)
	return v, err
}

// Rehidratar restores the three selections from the remembered ciudad id.
// An id that no longer resolves resets the hierarchy and is forgotten.
func (s *Selector) Rehidratar(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deps.Prefs == nil {
		return
	}

	id, ok, err := s.deps.Prefs.Get(ctx, s.usuarioID, ClaveCiudadSeleccionada)
	if err != nil {
		log.Warn().Err(err).Str("usuario_id", s.usuarioID).Msg("no se pudo leer la ciudad recordada")
		return
	}
	if !ok {
		id = s.migrarLegacy(ctx)
	}
	if id == "" {
		return
	}

	var (
		c = buscarCiudad(s.ciudades, id)
		e *model.Estado
		p *model.Pais
	)
	if c != nil {
		e = buscarEstado(s.estados, c.EstadoID)
	}
	if e != nil {
		p = buscarPais(s.paises, e.PaisID)
	}
	if p == nil {
		s.etapas = [3]Etapa{explorando, explorando, explorando}
		_ = s.deps.Prefs.Delete(ctx, s.usuarioID, ClaveCiudadSeleccionada)
		return
	}
	s.etapas = [3]Etapa{
		{Modo: Seleccionado, SeleccionID: p.ID},
		{Modo: Seleccionado, SeleccionID: e.ID},
		{Modo: Seleccionado, SeleccionID: c.ID},
	}
}

// migrarLegacy resolves the old name-based key by exact name, stores the
// id under the current key and drops the old one.
func (s *Selector) migrarLegacy(ctx context.Context) string {
	nombre, ok, err := s.deps.Prefs.Get(ctx, s.usuarioID, ClaveCiudadLegacy)
	if err != nil || !ok {
		return ""
	}
	var id string
	for _, c := range s.ciudades {
		if c.Nombre == nombre {
			id = c.ID
			break
		}
	}
	if id != "" {
		_ = s.deps.Prefs.Set(ctx, s.usuarioID, ClaveCiudadSeleccionada, id)
	}
	_ = s.deps.Prefs.Delete(ctx, s.usuarioID, ClaveCiudadLegacy)
	return id
}

// ── transiciones (s.mu held) ─────────────────────────────────────────────────

func (s *Selector) resetDesde(idx int) {
	for i := idx; i < len(s.etapas); i++ {
		s.etapas[i] = explorando
	}
}

func (s *Selector) seleccionarPais(id string) error {
	switch id {
	case Nuevo:
		return s.crearNuevo(NivelPais)
	case "":
		s.resetDesde(0)
		return nil
	}
	if buscarPais(s.paises, id) == nil {
		return invalido(string(NivelPais), "El país seleccionado no existe.")
	}
	s.etapas[0] = Etapa{Modo: Seleccionado, SeleccionID: id}
	s.resetDesde(1)
	return nil
}

func (s *Selector) seleccionarEstado(id string) error {
	if id == Nuevo {
		return s.crearNuevo(NivelEstado)
	}
	if s.etapas[0].Modo != Seleccionado {
		return invalido(string(NivelPais), mensajePadre[NivelPais])
	}
	if id == "" {
		s.resetDesde(1)
		return nil
	}
	e := buscarEstado(s.estados, id)
	if e == nil || e.PaisID != s.etapas[0].SeleccionID {
		return invalido(string(NivelEstado), "El estado seleccionado no pertenece al país.")
	}
	s.etapas[1] = Etapa{Modo: Seleccionado, SeleccionID: id}
	s.resetDesde(2)
	return nil
}

func (s *Selector) seleccionarCiudad(ctx context.Context, id string) error {
	if id == Nuevo {
		return s.crearNuevo(NivelCiudad)
	}
	if s.etapas[1].Modo != Seleccionado {
		return invalido(string(NivelEstado), mensajePadre[NivelEstado])
	}
	if id == "" {
		s.resetDesde(2)
		return nil
	}
	c := buscarCiudad(s.ciudades, id)
	if c == nil || c.EstadoID != s.etapas[1].SeleccionID {
		return invalido(string(NivelCiudad), "La ciudad seleccionada no pertenece al estado.")
	}
	s.etapas[2] = Etapa{Modo: Seleccionado, SeleccionID: id}
	s.recordar(ctx, id)
	return nil
}

func (s *Selector) crearNuevo(n Nivel) error {
	idx := n.indice()
	if idx < 0 {
		return invalido("nivel", "Nivel desconocido.")
	}
	if idx > 0 && s.etapas[idx-1].Modo == Explorando {
		padre := niveles[idx-1]
		return invalido(string(padre), mensajePadre[padre])
	}
	s.etapas[idx] = Etapa{Modo: Creando}
	s.resetDesde(idx + 1)
	return nil
}

func (s *Selector) escribirNombre(n Nivel, nombre string) error {
	idx := n.indice()
	if idx < 0 {
		return invalido("nivel", "Nivel desconocido.")
	}
	if s.etapas[idx].Modo != Creando {
		return invalido(string(n), "El nivel no está en modo de creación.")
	}
	s.etapas[idx].NombreNuevo = nombre
	return nil
}

func (s *Selector) cancelar(n Nivel) error {
	idx := n.indice()
	if idx < 0 {
		return invalido("nivel", "Nivel desconocido.")
	}
	if s.etapas[idx].Modo == Creando {
		s.resetDesde(idx)
	}
	return nil
}

func (s *Selector) guardar(ctx context.Context, n Nivel) error {
	idx := n.indice()
	if idx < 0 {
		return invalido("nivel", "Nivel desconocido.")
	}
	if s.etapas[idx].Modo != Creando {
		return invalido(string(n), "No hay un registro nuevo que guardar.")
	}

	plan := Plan{Hasta: n}
	pasos := [3]*Paso{&plan.Pais, &plan.Estado, &plan.Ciudad}
	for i := 0; i <= idx; i++ {
		switch et := s.etapas[i]; et.Modo {
		case Creando:
			*pasos[i] = Paso{Nuevo: true, Nombre: et.NombreNuevo}
		case Seleccionado:
			*pasos[i] = Paso{ID: et.SeleccionID}
		}
	}

	res, err := Persistir(ctx, s.deps.Repo, plan)

	// adopt whatever was created, even when a lower level failed
	if plan.Pais.Nuevo && res.Pais != nil && res.Pais.ID != "" {
		s.paises = append(s.paises, *res.Pais)
		s.etapas[0] = Etapa{Modo: Seleccionado, SeleccionID: res.Pais.ID}
	}
	if plan.Estado.Nuevo && res.Estado != nil && res.Estado.ID != "" {
		s.estados = append(s.estados, *res.Estado)
		s.etapas[1] = Etapa{Modo: Seleccionado, SeleccionID: res.Estado.ID}
	}
	if plan.Ciudad.Nuevo && res.Ciudad != nil && res.Ciudad.ID != "" {
		s.ciudades = append(s.ciudades, *res.Ciudad)
		s.etapas[2] = Etapa{Modo: Seleccionado, SeleccionID: res.Ciudad.ID}
	}
	if err != nil {
		return err
	}

	s.resetDesde(idx + 1)
	if n == NivelCiudad {
		s.recordar(ctx, res.Ciudad.ID)
	}

	paises, estados, ciudades, err := s.leer(ctx)
	if err != nil {
		log.Warn().Err(err).Str("usuario_id", s.usuarioID).Msg("no se pudieron recargar las ubicaciones")
		return nil
	}
	s.asignar(paises, estados, ciudades)
	return nil
}

func (s *Selector) recordar(ctx context.Context, ciudadID string) {
	if s.deps.Prefs == nil {
		return
	}
	if err := s.deps.Prefs.Set(ctx, s.usuarioID, ClaveCiudadSeleccionada, ciudadID); err != nil {
		log.Warn().Err(err).Str("usuario_id", s.usuarioID).Msg("no se pudo recordar la ciudad")
	}
}

func (s *Selector) vistaLocked() Vista {
	v := Vista{
		Pais:     s.etapas[0],
		Estado:   s.etapas[1],
		Ciudad:   s.etapas[2],
		Paises:   append(make([]model.Pais, 0, len(s.paises)), s.paises...),
		Estados:  []model.Estado{},
		Ciudades: []model.Ciudad{},
	}
	if s.etapas[0].Modo == Seleccionado {
		v.Estados = estadosDe(s.estados, s.etapas[0].SeleccionID)
	}
	if s.etapas[1].Modo == Seleccionado {
		v.Ciudades = ciudadesDe(s.ciudades, s.etapas[1].SeleccionID)
	}
	if s.etapas[2].Modo == Seleccionado {
		if c := buscarCiudad(s.ciudades, s.etapas[2].SeleccionID); c != nil {
			v.Etiqueta = Etiqueta(*c, s.estados, s.paises)
		}
	}
	return v
}

// ── carga de listas ──────────────────────────────────────────────────────────

// leer fetches the three lists; it does not touch selector state.
func (s *Selector) leer(ctx context.Context) ([]model.Pais, []model.Estado, []model.Ciudad, error) {
	paises, err := s.deps.Repo.Paises(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	estados, err := s.deps.Repo.Estados(ctx, "")
	if err != nil {
		return nil, nil, nil, err
	}
	ciudades, err := s.deps.Repo.Ciudades(ctx, "")
	if err != nil {
		return nil, nil, nil, err
	}
	return paises, estados, ciudades, nil
}

func (s *Selector) recargar(ctx context.Context) error {
	paises, estados, ciudades, err := s.leer(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.asignar(paises, estados, ciudades)
	s.mu.Unlock()
	return nil
}

// recargarColecciones refetches only the named lists.
func (s *Selector) recargarColecciones(ctx context.Context, cols map[string]bool) error {
	var (
		paises   []model.Pais
		estados  []model.Estado
		ciudades []model.Ciudad
		err      error
	)
	if cols[model.ColeccionPaises] {
		if paises, err = s.deps.Repo.Paises(ctx); err != nil {
			return err
		}
	}
	if cols[model.ColeccionEstados] {
		if estados, err = s.deps.Repo.Estados(ctx, ""); err != nil {
			return err
		}
	}
	if cols[model.ColeccionCiudades] {
		if ciudades, err = s.deps.Repo.Ciudades(ctx, ""); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if paises == nil {
		paises = s.paises
	}
	if estados == nil {
		estados = s.estados
	}
	if ciudades == nil {
		ciudades = s.ciudades
	}
	s.asignar(paises, estados, ciudades)
	return nil
}

// asignar replaces the lists and drops selections whose record disappeared
// (s.mu held).
func (s *Selector) asignar(paises []model.Pais, estados []model.Estado, ciudades []model.Ciudad) {
	s.paises, s.estados, s.ciudades = paises, estados, ciudades

	if s.etapas[0].Modo == Seleccionado && buscarPais(s.paises, s.etapas[0].SeleccionID) == nil {
		s.resetDesde(0)
		return
	}
	if s.etapas[1].Modo == Seleccionado {
		e := buscarEstado(s.estados, s.etapas[1].SeleccionID)
		if e == nil || e.PaisID != s.etapas[0].SeleccionID {
			s.resetDesde(1)
			return
		}
	}
	if s.etapas[2].Modo == Seleccionado {
		c := buscarCiudad(s.ciudades, s.etapas[2].SeleccionID)
		if c == nil || c.EstadoID != s.etapas[1].SeleccionID {
			s.resetDesde(2)
		}
	}
}

// ── suscripción ──────────────────────────────────────────────────────────────

func (s *Selector) vigilar(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sub.Eventos():
			if !ok {
				return
			}
			cols := map[string]bool{ev.Coleccion: true}
			// coalesce whatever else is already queued into one refetch
		drain:
			for {
				select {
				case mas, ok := <-s.sub.Eventos():
					if !ok {
						return
					}
					cols[mas.Coleccion] = true
				default:
					break drain
				}
			}

			var err error
			if s.sub.PerdioEventos() {
				err = s.recargar(ctx)
			} else {
				err = s.recargarColecciones(ctx, cols)
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Str("component", "ubicacion").Str("usuario_id", s.usuarioID).
					Msg("no se pudo refrescar el selector")
				continue
			}
			s.notificar(s.Vista())
		}
	}
}

func (s *Selector) notificar(v Vista) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for o := range s.observadores {
		select {
		case o.ch <- v:
		default:
		}
	}
}
