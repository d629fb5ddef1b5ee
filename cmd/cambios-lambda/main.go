// Command cambios-lambda relays the DynamoDB stream of the documents table
// to the redis change channel, so every API instance sees writes made by
// any process (the CLI included).
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/store/dynstore"
)

type relevo struct {
	pub cambios.Publisher
}

// handle publishes one event per record. An error makes lambda retry the
// whole batch; subscribers only refetch, so repeats are harmless.
func (r relevo) handle(ctx context.Context, ev events.DynamoDBEvent) error {
	evs := dynstore.Eventos(ev)
	for _, e := range evs {
		if err := r.pub.Publish(ctx, e); err != nil {
			return fmt.Errorf("publicar %s/%s: %w", e.Coleccion, e.ID, err)
		}
	}
	log.Debug().Int("records", len(ev.Records)).Int("eventos", len(evs)).Msg("stream relevado")
	return nil
}

func main() {
	viper.AutomaticEnv()
	url := viper.GetString("REDIS_URL")
	if url == "" {
		log.Fatal().Msg("REDIS_URL es obligatorio")
	}
	rdb, err := infra.NewRedis(context.Background(), url)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	lambda.Start(relevo{pub: cambios.NewRedisPublisher(rdb)}.handle)
}
