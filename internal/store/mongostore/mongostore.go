// Package mongostore implements store.Backend on MongoDB. Each store
// collection maps to a MongoDB collection; document ids are UUID strings
// kept in _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/juliosincable/infourbi/internal/store"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Backend = (*Store)(nil)

// Connect dials uri, pings the server and binds the named database.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	c, err := mongo.Connect(dctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := c.Ping(dctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: c, db: c.Database(dbName)}, nil
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Documento, error) {
	var m bson.M
	err := s.col(coleccion).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.Documento{}, fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	if err != nil {
		return store.Documento{}, err
	}
	return toDocumento(m), nil
}

func (s *Store) Add(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id}
	for k, v := range datos {
		doc[k] = v
	}
	if _, err := s.col(coleccion).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, campos map[string]any) error {
	res, err := s.col(coleccion).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(campos)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	_, err := s.col(coleccion).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) Query(ctx context.Context, coleccion string, q store.Query) ([]store.Documento, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	dir := 1
	if q.Direccion == store.Desc {
		dir = -1
	}
	sort := bson.D{}
	if q.OrderBy != "" {
		sort = append(sort, bson.E{Key: q.OrderBy, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: dir})

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.col(coleccion).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]store.Documento, 0)
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, toDocumento(m))
	}
	return out, cur.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var operadores = map[store.Operador]string{
	store.Igual:      "$eq",
	store.Distinto:   "$ne",
	store.Menor:      "$lt",
	store.MenorIgual: "$lte",
	store.Mayor:      "$gt",
	store.MayorIgual: "$gte",
	store.En:         "$in",
}

func buildFilter(q store.Query) (bson.M, error) {
	and := bson.A{}
	for _, cl := range q.Where {
		if cl.Operador == store.ArrayContiene {
			// an equality match on an array field matches any element
			and = append(and, bson.M{cl.Campo: cl.Valor})
			continue
		}
		op, ok := operadores[cl.Operador]
		if !ok {
			return nil, fmt.Errorf("mongostore: operador no soportado %q", cl.Operador)
		}
		and = append(and, bson.M{cl.Campo: bson.M{op: cl.Valor}})
	}

	if q.OrderBy != "" {
		and = append(and, bson.M{q.OrderBy: bson.M{"$exists": true}})
	}

	if q.After != nil {
		cmp := "$gt"
		if q.Direccion == store.Desc {
			cmp = "$lt"
		}
		if q.OrderBy == "" {
			and = append(and, bson.M{"_id": bson.M{cmp: q.After.ID}})
		} else {
			and = append(and, bson.M{"$or": bson.A{
				bson.M{q.OrderBy: bson.M{cmp: q.After.Valor}},
				bson.M{q.OrderBy: q.After.Valor, "_id": bson.M{cmp: q.After.ID}},
			}})
		}
	}

	if len(and) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": and}, nil
}

func toDocumento(m bson.M) store.Documento {
	var id string
	switch v := m["_id"].(type) {
	case string:
		id = v
	case primitive.ObjectID:
		id = v.Hex()
	default:
		id = fmt.Sprint(v)
	}
	delete(m, "_id")
	datos, _ := store.Normalize(m).(map[string]any)
	return store.Documento{ID: id, Datos: datos}
}
