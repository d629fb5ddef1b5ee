//go:build integration

package router

// End-to-end tests against real backends started with testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/ubicacion"
	"github.com/juliosincable/infourbi/internal/worker"
)

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func e2eConfig(driver string) *config.Config {
	return &config.Config{
		Env:                 "test",
		StoreDriver:         driver,
		AuthProvider:        config.AuthLocal,
		JWTSecret:           "test-secret-key",
		JWTExpirationHours:  1,
		CORSOrigins:         "*",
		SelectorIdleMinutes: 5,
		MongoDB:             "infourbi_test",
	}
}

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("infourbi_test"),
		tcPostgres.WithUsername("infourbi"),
		tcPostgres.WithPassword("infourbi"),
		// byte order collation, so prefix ranges match the other backends
		testcontainers.WithEnv(map[string]string{"POSTGRES_INITDB_ARGS": "--locale=C"}),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func startMongo(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	mC, err := tcMongo.RunContainer(ctx, testcontainers.WithImage("mongo:7"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mC.Terminate(ctx) })

	uri, err := mC.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func startDynamo(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	dC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory"},
			ExposedPorts: []string{"8000/tcp"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dC.Terminate(ctx) })

	endpoint, err := dC.PortEndpoint(ctx, "8000/tcp", "http")
	require.NoError(t, err)
	return endpoint
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// newE2EApp builds the app the way cmd/server does, including the redis
// change relay when rdb is set.
func newE2EApp(t *testing.T, cfg *config.Config, rdb *redis.Client) (*App, *cambios.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	backend, err := infra.NewBackend(ctx, cfg, nil)
	require.NoError(t, err)

	hub := cambios.NewHub(0)
	done := make(chan struct{})
	if rdb != nil {
		go func() {
			defer close(done)
			if err := cambios.NewRelay(rdb, hub).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				t.Logf("relay: %v", err)
			}
		}()
	} else {
		close(done)
	}

	app := New(cfg, Deps{Backend: backend, Hub: hub, Redis: rdb})
	t.Cleanup(func() {
		app.Sesiones.CerrarTodos()
		cancel()
		<-done
		hub.Close()
		_ = backend.Close(context.Background())
	})
	return app, hub
}

// ── Scenario ─────────────────────────────────────────────────────────────────

// escenario runs the main user journey against whatever backend app uses.
func escenario(t *testing.T, app *App) {
	token := registrar(t, app, "e2e@infourbi.test")

	// 1. Cascade create and label
	w := do(t, app, http.MethodPost, "/v1/ubicaciones", map[string]any{
		"pais":   map[string]any{"nombre": "Venezuela", "nuevo": true},
		"estado": map[string]any{"nombre": "Aragua", "nuevo": true},
		"ciudad": map[string]any{"nombre": "Turmero", "nuevo": true},
		"hasta":  "ciudad",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cascada := decode[dto.CascadaResponse](t, w)
	assert.Equal(t, "Turmero (Aragua, Venezuela)", cascada.Etiqueta)

	// 2. Selection survives the selector being closed
	for _, ev := range []struct{ nivel, id string }{
		{"pais", cascada.PaisID}, {"estado", cascada.EstadoID}, {"ciudad", cascada.CiudadID},
	} {
		w = do(t, app, http.MethodPost, "/v1/seleccion/eventos",
			map[string]string{"tipo": "seleccionar", "nivel": ev.nivel, "id": ev.id}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/seleccion", nil, token).Code)
	w = do(t, app, http.MethodGet, "/v1/seleccion", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[ubicacion.Vista](t, w)
	assert.Equal(t, cascada.CiudadID, v.Ciudad.SeleccionID)
	assert.Equal(t, "Turmero (Aragua, Venezuela)", v.Etiqueta)

	// 3. Negocios: prefix search, paging, delete
	for _, nombre := range []string{"Pizzería Roma", "Panadería Sol", "Ferretería Luz"} {
		w = do(t, app, http.MethodPost, "/v1/negocios", map[string]any{
			"nombre": nombre, "lugar": []string{"centro"},
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = do(t, app, http.MethodGet, "/v1/negocios?q=P", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[dto.NegocioPageResponse](t, w).Items
	require.Len(t, items, 2)
	assert.Equal(t, "Panadería Sol", items[0].Nombre)
	assert.Equal(t, "Pizzería Roma", items[1].Nombre)

	w = do(t, app, http.MethodGet, "/v1/negocios?limit=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.NegocioPageResponse](t, w)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.Cursor)
	w = do(t, app, http.MethodGet, "/v1/negocios?limit=2&cursor="+page.Cursor, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	rest := decode[dto.NegocioPageResponse](t, w)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "Pizzería Roma", rest.Items[0].Nombre)

	id := items[0].ID
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/negocios/"+id+"?confirmar=true", nil, token).Code)
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/v1/negocios/"+id+"?confirmar=true", nil, token).Code)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/v1/negocios/"+id, nil, token).Code)

	// 4. Counts
	w = do(t, app, http.MethodGet, "/prueba", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	conteos := decode[struct {
		Conteos map[string]int `json:"conteos"`
	}](t, w).Conteos
	assert.Equal(t, 2, conteos[model.ColeccionNegocios])
	assert.Equal(t, 1, conteos[model.ColeccionCiudades])
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_PostgresRedis(t *testing.T) {
	cfg := e2eConfig(config.DriverPostgres)
	cfg.DatabaseURL = startPostgres(t)
	rdb := startRedis(t)
	app, _ := newE2EApp(t, cfg, rdb)

	escenario(t, app)

	// welcome email queued for the worker pool
	n, err := rdb.LLen(context.Background(), worker.QueueEmail).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// revocation is shared through redis
	token := registrar(t, app, "otra@infourbi.test")
	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodPost, "/v1/auth/logout", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/v1/paises", nil, token).Code)

	w := do(t, app, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "connected", decode[map[string]any](t, w)["redis"])
}

func TestE2E_PostgresRedis_ChangeRelay(t *testing.T) {
	cfg := e2eConfig(config.DriverPostgres)
	cfg.DatabaseURL = startPostgres(t)
	rdb := startRedis(t)
	app, hub := newE2EApp(t, cfg, rdb)
	token := registrar(t, app, "e2e@infourbi.test")

	// a mutation publishes to redis and the relay feeds the local hub. The
	// relay may not be subscribed yet, so keep creating until one arrives.
	sub := hub.Subscribe(model.ColeccionPaises)
	defer sub.Close()
	for i := 0; i < 20; i++ {
		w := do(t, app, http.MethodPost, "/v1/paises", map[string]string{"nombre": fmt.Sprintf("País %d", i)}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		select {
		case ev := <-sub.Eventos():
			assert.Equal(t, model.ColeccionPaises, ev.Coleccion)
			assert.Equal(t, cambios.Creado, ev.Operacion)
			return
		case <-time.After(250 * time.Millisecond):
		}
	}
	t.Fatal("no change event relayed")
}

func TestE2E_Mongo(t *testing.T) {
	cfg := e2eConfig(config.DriverMongo)
	cfg.MongoURI = startMongo(t)
	app, _ := newE2EApp(t, cfg, nil)

	escenario(t, app)
}

func TestE2E_Dynamo(t *testing.T) {
	cfg := e2eConfig(config.DriverDynamo)
	cfg.DynamoTable = "infourbi_test"
	cfg.DynamoRegion = "us-east-1"
	cfg.DynamoEndpoint = startDynamo(t)
	app, _ := newE2EApp(t, cfg, nil)

	escenario(t, app)
}
