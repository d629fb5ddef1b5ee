package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(docs []Documento) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestEvaluar(t *testing.T) {
	base := func() []Documento {
		return []Documento{
			{ID: "c", Datos: map[string]any{"nombre": "Turmero", "estado_id": "ar"}},
			{ID: "a", Datos: map[string]any{"nombre": "Maracay", "estado_id": "ar"}},
			{ID: "b", Datos: map[string]any{"nombre": "Cagua", "estado_id": "ar"}},
			{ID: "d", Datos: map[string]any{"nombre": "Valencia", "estado_id": "ca"}},
			{ID: "e", Datos: map[string]any{"estado_id": "ar"}},
		}
	}
	enAragua := []Clause{Where("estado_id", Igual, "ar")}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"por id", Query{Where: enAragua}, []string{"a", "b", "c", "e"}},
		{"por id desc", Query{Where: enAragua, Direccion: Desc}, []string{"e", "c", "b", "a"}},
		{"por nombre omite sin campo", Query{Where: enAragua, OrderBy: "nombre"}, []string{"b", "a", "c"}},
		{"cursor y limite", Query{Where: enAragua, OrderBy: "nombre", After: &Cursor{ID: "b", Valor: "Cagua"}, Limit: 1}, []string{"a"}},
		{"cursor desc", Query{OrderBy: "nombre", Direccion: Desc, After: &Cursor{ID: "c", Valor: "Turmero"}}, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Evaluar(base(), tt.q)))
		})
	}
}

func TestSetPath(t *testing.T) {
	m := map[string]any{}
	SetPath(m, "coordenadas.lat", 10.2)
	SetPath(m, "nombre", "Sol")
	assert.Equal(t, map[string]any{"coordenadas": map[string]any{"lat": 10.2}, "nombre": "Sol"}, m)
}
