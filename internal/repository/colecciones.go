package repository

import (
	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
)

// Colecciones binds every typed collection to one backend and change publisher.
type Colecciones struct {
	Usuarios  *store.Collection[model.Usuario]
	Negocios  *store.Collection[model.Negocio]
	Paises    *store.Collection[model.Pais]
	Estados   *store.Collection[model.Estado]
	Ciudades  *store.Collection[model.Ciudad]
	Lugares   *store.Collection[model.Lugar]
	Eventos   *store.Collection[model.Evento]
	Productos *store.Collection[model.Producto]
}

func NewColecciones(b store.Backend, pub cambios.Publisher) *Colecciones {
	return &Colecciones{
		Usuarios:  store.NewCollection[model.Usuario](b, model.ColeccionUsuarios, pub),
		Negocios:  store.NewCollection[model.Negocio](b, model.ColeccionNegocios, pub),
		Paises:    store.NewCollection[model.Pais](b, model.ColeccionPaises, pub),
		Estados:   store.NewCollection[model.Estado](b, model.ColeccionEstados, pub),
		Ciudades:  store.NewCollection[model.Ciudad](b, model.ColeccionCiudades, pub),
		Lugares:   store.NewCollection[model.Lugar](b, model.ColeccionLugares, pub),
		Eventos:   store.NewCollection[model.Evento](b, model.ColeccionEventos, pub),
		Productos: store.NewCollection[model.Producto](b, model.ColeccionProductos, pub),
	}
}

var porNombre = &store.Pagination{OrderBy: "nombre"}
