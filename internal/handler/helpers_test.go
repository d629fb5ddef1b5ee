package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliosincable/infourbi/internal/negocio"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/ubicacion"
)

func init() { gin.SetMode(gin.TestMode) }

func TestResponderError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"auth", &service.AuthError{Codigo: service.CodigoPasswordIncorrecto}, http.StatusUnauthorized, service.CodigoPasswordIncorrecto},
		{"validacion", &ubicacion.ErrValidacion{Campos: map[string]string{"pais": "requerido"}}, http.StatusUnprocessableEntity, "requerido"},
		{"nombre vacio", negocio.ErrNombreVacio, http.StatusUnprocessableEntity, `"nombre"`},
		{"padre", fmt.Errorf("estado: %w", service.ErrPadreNoExiste), http.StatusUnprocessableEntity, "padre"},
		{"no encontrado", service.ErrNoEncontrado, http.StatusNotFound, "no encontrado"},
		{"cursor", store.ErrCursor, http.StatusBadRequest, "Cursor"},
		{"cerrado", ubicacion.ErrCerrado, http.StatusConflict, "selector"},
		{"store", &store.OpError{Op: store.OpCreate, Coleccion: "paises", Err: errors.New("timeout")}, http.StatusInternalServerError, "No se pudo agregar el documento."},
		{"otro", errors.New("boom"), http.StatusInternalServerError, "Error interno"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			responderError(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
			assert.NotContains(t, w.Body.String(), "timeout")
		})
	}
}

func TestParsePagination(t *testing.T) {
	parse := func(q string) (store.Pagination, int) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+q, nil)
		p, ok := parsePagination(c)
		if !ok {
			return p, w.Code
		}
		return p, 0
	}

	p, code := parse("limit=10&cursor=abc&orden=desc")
	require.Zero(t, code)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, "abc", p.Cursor)
	assert.Equal(t, store.Desc, p.Direccion)

	for _, q := range []string{"limit=0", "limit=101", "limit=diez"} {
		_, code = parse(q)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestBindAndValidate(t *testing.T) {
	type req struct {
		Nombre string `json:"nombre" validate:"required"`
	}
	bind := func(body string) (bool, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var r req
		return bindAndValidate(c, &r), w
	}

	ok, _ := bind(`{"nombre":"Chile"}`)
	assert.True(t, ok)

	ok, w := bind(`{"nombre":`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ok, w = bind(`{}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"Nombre":"required"`)
}
