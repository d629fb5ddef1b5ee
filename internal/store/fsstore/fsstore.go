// Package fsstore implements store.Backend on Cloud Firestore.
package fsstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/juliosincable/infourbi/internal/store"
)

type Store struct {
	client *firestore.Client
}

var _ store.Backend = (*Store)(nil)

// New wraps a client obtained from firebase.App.Firestore.
func New(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Documento, error) {
	snap, err := s.client.Collection(coleccion).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return store.Documento{}, fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	if err != nil {
		return store.Documento{}, err
	}
	return store.Documento{ID: snap.Ref.ID, Datos: snap.Data()}, nil
}

func (s *Store) Add(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	ref, _, err := s.client.Collection(coleccion).Add(ctx, datos)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, campos map[string]any) error {
	updates := make([]firestore.Update, 0, len(campos))
	for k, v := range campos {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	_, err := s.client.Collection(coleccion).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	_, err := s.client.Collection(coleccion).Doc(id).Delete(ctx)
	return err
}

func (s *Store) Query(ctx context.Context, coleccion string, q store.Query) ([]store.Documento, error) {
	fq := s.client.Collection(coleccion).Query
	for _, cl := range q.Where {
		// Firestore uses the same operator spelling
		fq = fq.Where(cl.Campo, string(cl.Operador), cl.Valor)
	}

	dir := firestore.Asc
	if q.Direccion == store.Desc {
		dir = firestore.Desc
	}
	if q.OrderBy != "" {
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	fq = fq.OrderBy(firestore.DocumentID, dir)

	if q.After != nil {
		if q.OrderBy != "" {
			fq = fq.StartAfter(q.After.Valor, q.After.ID)
		} else {
			fq = fq.StartAfter(q.After.ID)
		}
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	snaps, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]store.Documento, len(snaps))
	for i, snap := range snaps {
		out[i] = store.Documento{ID: snap.Ref.ID, Datos: snap.Data()}
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Collection("_ping").Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *Store) Close(context.Context) error {
	return s.client.Close()
}
