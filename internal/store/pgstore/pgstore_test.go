package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliosincable/infourbi/internal/store"
)

func TestJSONPath(t *testing.T) {
	assert.Equal(t, "{nombre}", jsonPath("nombre"))
	assert.Equal(t, "{coordenadas,lat}", jsonPath("coordenadas.lat"))
}

func TestBuildConditions(t *testing.T) {
	conds, err := buildConditions(store.Query{
		Where: []store.Clause{
			store.Where("nombre", store.MayorIgual, "Tu"),
			store.Where("estado_id", store.En, []string{"a", "b"}),
			store.Where("lugar", store.ArrayContiene, "centro"),
		},
		OrderBy: "nombre",
		After:   &store.Cursor{ID: "c1", Valor: "Turmero"},
	})
	require.NoError(t, err)
	require.Len(t, conds, 5)

	assert.Equal(t, "datos #> ?::text[] >= ?::jsonb", conds[0].SQL)
	assert.Equal(t, []any{"{nombre}", `"Tu"`}, conds[0].Vars)

	assert.Equal(t, "(datos #> ?::text[] = ?::jsonb OR datos #> ?::text[] = ?::jsonb)", conds[1].SQL)
	assert.Equal(t, []any{"{estado_id}", `"a"`, "{estado_id}", `"b"`}, conds[1].Vars)

	assert.Equal(t, "datos #> ?::text[] @> ?::jsonb", conds[2].SQL)
	assert.Equal(t, []any{"{lugar}", `["centro"]`}, conds[2].Vars)

	assert.Equal(t, "datos #> ?::text[] IS NOT NULL", conds[3].SQL)
	assert.Equal(t, "(datos #> ?::text[], id) > (?::jsonb, ?)", conds[4].SQL)
	assert.Equal(t, []any{"{nombre}", `"Turmero"`, "c1"}, conds[4].Vars)
}

func TestBuildConditions_EmptyIn(t *testing.T) {
	conds, err := buildConditions(store.Query{Where: []store.Clause{store.Where("x", store.En, []string{})}})
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, "FALSE", conds[0].SQL)
}

func TestBuildConditions_CursorWithoutOrder(t *testing.T) {
	conds, err := buildConditions(store.Query{Direccion: store.Desc, After: &store.Cursor{ID: "z"}})
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, "id < ?", conds[0].SQL)
}
