package infra

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/negocio"
)

func TestFichaPDF(t *testing.T) {
	n := model.Negocio{ID: "n1", Nombre: "Panadería Ñandú", Direccion: "Av. Bolívar 12"}
	out, err := FichaPDF(n.Nombre, negocio.Ficha(n))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}
