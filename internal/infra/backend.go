package infra

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/store/dynstore"
	"github.com/juliosincable/infourbi/internal/store/fsstore"
	"github.com/juliosincable/infourbi/internal/store/memstore"
	"github.com/juliosincable/infourbi/internal/store/mongostore"
	"github.com/juliosincable/infourbi/internal/store/pgstore"
)

// NewBackend opens the document store selected by STORE_DRIVER. fb is only
// read for the firestore driver.
func NewBackend(ctx context.Context, cfg *config.Config, fb *Firebase) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMemoria:
		log.Warn().Str("component", "store").Msg("usando el store en memoria; los datos se pierden al reiniciar")
		return memstore.New(), nil
	case config.DriverPostgres:
		db, err := NewDatabase(ctx, cfg.DatabaseURL, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return pgstore.New(db)
	case config.DriverMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DriverDynamo:
		return dynstore.Open(ctx, dynstore.Config{
			Table:    cfg.DynamoTable,
			Region:   cfg.DynamoRegion,
			Endpoint: cfg.DynamoEndpoint,
		})
	case config.DriverFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("firestore: cliente no inicializado")
		}
		return fsstore.New(fb.Firestore), nil
	}
	return nil, fmt.Errorf("store: driver desconocido %q", cfg.StoreDriver)
}
