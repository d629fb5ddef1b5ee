package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/middleware"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/ubicacion"
)

// Campo describes one input of the login form.
type Campo struct {
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
	Label  string `json:"label"`
}

// PaginasHandler renders the JSON descriptors of the app's screens.
type PaginasHandler struct {
	auth     service.AuthService
	negocios service.NegocioService
	resumen  service.ResumenService
	sesiones *ubicacion.Sesiones
}

func NewPaginasHandler(auth service.AuthService, negocios service.NegocioService, resumen service.ResumenService, sesiones *ubicacion.Sesiones) *PaginasHandler {
	return &PaginasHandler{auth: auth, negocios: negocios, resumen: resumen, sesiones: sesiones}
}

var codigosLogin = []string{
	service.CodigoUsuarioNoEncontrado,
	service.CodigoPasswordIncorrecto,
	service.CodigoEmailInvalido,
	service.CodigoDemasiadosIntentos,
	service.CodigoFalloDeRed,
}

// Login describes the login form, its error messages and where to go next.
func (h *PaginasHandler) Login(c *gin.Context) {
	errores := make(map[string]string, len(codigosLogin))
	for _, code := range codigosLogin {
		errores[code] = service.MensajeError(code)
	}
	destino := destinoLocal(c.Query("from"))
	c.JSON(http.StatusOK, gin.H{
		"titulo": "Iniciar sesión",
		"accion": "/v1/auth/login",
		"campos": []Campo{
			{Nombre: "correo", Tipo: "email", Label: "Email"},
			{Nombre: "password", Tipo: "password", Label: "Contraseña"},
		},
		"errores":        errores,
		"error_generico": service.MensajeGenerico,
		"redirigir_a":    destino,
	})
}

// destinoLocal keeps a post-login redirect on this site. Browsers read a
// backslash as a slash, so "/\host" is as off-site as "//host".
func destinoLocal(from string) string {
	if !strings.HasPrefix(from, "/") || strings.ContainsRune(from, '\\') {
		return "/home"
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, "//") {
		return "/home"
	}
	return from
}

// Profile shows the signed-in user.
func (h *PaginasHandler) Profile(c *gin.Context) {
	u := perfil(c, h.auth, middleware.GetSesion(c).Identidad)
	if u == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"usuario": u})
}

// Home shows the remembered ciudad and the first page of negocios.
func (h *PaginasHandler) Home(c *gin.Context) {
	sel, err := h.sesiones.Obtener(c.Request.Context(), usuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	negocios, err := h.negocios.Listar(c.Request.Context(), "", store.Pagination{PageSize: 20})
	if err != nil {
		responderError(c, err)
		return
	}
	vista := sel.Vista()
	c.JSON(http.StatusOK, gin.H{
		"ciudad":   vista.Etiqueta,
		"vista":    vista,
		"negocios": negocios,
	})
}

// Prueba is the management screen: document counts per collection.
func (h *PaginasHandler) Prueba(c *gin.Context) {
	conteos, err := h.resumen.Conteos(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conteos": conteos})
}

// Negocio is the public details page of one negocio.
func (h *PaginasHandler) Negocio(c *gin.Context) {
	ficha, err := h.negocios.Ficha(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ficha)
}
