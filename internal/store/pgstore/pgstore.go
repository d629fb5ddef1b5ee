// Package pgstore implements store.Backend on PostgreSQL through GORM.
// Every collection shares the documentos table; the document body is a
// jsonb column and filters/ordering are evaluated on jsonb values, so
// strings sort with the database collation (initialise the cluster with
// --locale=C for byte order).
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/juliosincable/infourbi/internal/store"
)

// documento is one row of the documentos table.
type documento struct {
	Coleccion string            `gorm:"primaryKey;type:varchar(64)"`
	ID        string            `gorm:"primaryKey;type:varchar(64)"`
	Datos     datatypes.JSONMap `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documento) TableName() string { return "documentos" }

type Store struct {
	db *gorm.DB
}

var _ store.Backend = (*Store)(nil)

// New migrates the documentos table and returns the backend.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&documento{}); err != nil {
		return nil, fmt.Errorf("pgstore: AutoMigrate: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_documentos_datos ON documentos USING gin (datos jsonb_path_ops)`).Error; err != nil {
		return nil, fmt.Errorf("pgstore: indice datos: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Documento, error) {
	var d documento
	err := s.db.WithContext(ctx).
		Where("coleccion = ? AND id = ?", coleccion, id).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Documento{}, fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	if err != nil {
		return store.Documento{}, err
	}
	return toDocumento(d), nil
}

func (s *Store) Add(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	d := documento{Coleccion: coleccion, ID: uuid.NewString(), Datos: datatypes.JSONMap(datos)}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return "", err
	}
	return d.ID, nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, campos map[string]any) error {
	patch, err := json.Marshal(campos)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&documento{}).
		Where("coleccion = ? AND id = ?", coleccion, id).
		Updates(map[string]any{
			"datos":      gorm.Expr("datos || ?::jsonb", string(patch)),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	return s.db.WithContext(ctx).
		Where("coleccion = ? AND id = ?", coleccion, id).
		Delete(&documento{}).Error
}

func (s *Store) Query(ctx context.Context, coleccion string, q store.Query) ([]store.Documento, error) {
	tx := s.db.WithContext(ctx).Model(&documento{}).Where("coleccion = ?", coleccion)

	conds, err := buildConditions(q)
	if err != nil {
		return nil, err
	}
	for _, c := range conds {
		tx = tx.Where(c.SQL, c.Vars...)
	}
	tx = tx.Order(orderBy(q))
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []documento
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Documento, len(rows))
	for i, r := range rows {
		out[i] = toDocumento(r)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// condition is a parameterised WHERE fragment.
type condition struct {
	SQL  string
	Vars []any
}

var comparadores = map[store.Operador]string{
	store.Igual:      "=",
	store.Distinto:   "<>",
	store.Menor:      "<",
	store.MenorIgual: "<=",
	store.Mayor:      ">",
	store.MayorIgual: ">=",
}

const campoSQL = "datos #> ?::text[]"

func buildConditions(q store.Query) ([]condition, error) {
	var out []condition
	for _, cl := range q.Where {
		path := jsonPath(cl.Campo)
		switch cl.Operador {
		case store.En:
			vals, ok := cl.Valor.([]any)
			if !ok {
				vals = toAnySlice(cl.Valor)
			}
			if len(vals) == 0 {
				out = append(out, condition{SQL: "FALSE"})
				continue
			}
			parts := make([]string, len(vals))
			vars := make([]any, 0, len(vals)*2)
			for i, v := range vals {
				raw, err := jsonValue(v)
				if err != nil {
					return nil, err
				}
				parts[i] = campoSQL + " = ?::jsonb"
				vars = append(vars, path, raw)
			}
			out = append(out, condition{SQL: "(" + strings.Join(parts, " OR ") + ")", Vars: vars})
		case store.ArrayContiene:
			raw, err := jsonValue([]any{cl.Valor})
			if err != nil {
				return nil, err
			}
			out = append(out, condition{SQL: campoSQL + " @> ?::jsonb", Vars: []any{path, raw}})
		default:
			op, ok := comparadores[cl.Operador]
			if !ok {
				return nil, fmt.Errorf("pgstore: operador no soportado %q", cl.Operador)
			}
			raw, err := jsonValue(cl.Valor)
			if err != nil {
				return nil, err
			}
			out = append(out, condition{SQL: campoSQL + " " + op + " ?::jsonb", Vars: []any{path, raw}})
		}
	}

	if q.OrderBy != "" {
		out = append(out, condition{SQL: campoSQL + " IS NOT NULL", Vars: []any{jsonPath(q.OrderBy)}})
	}

	if q.After != nil {
		cmp := ">"
		if q.Direccion == store.Desc {
			cmp = "<"
		}
		if q.OrderBy == "" {
			out = append(out, condition{SQL: "id " + cmp + " ?", Vars: []any{q.After.ID}})
		} else {
			raw, err := jsonValue(q.After.Valor)
			if err != nil {
				return nil, err
			}
			out = append(out, condition{
				SQL:  "(" + campoSQL + ", id) " + cmp + " (?::jsonb, ?)",
				Vars: []any{jsonPath(q.OrderBy), raw, q.After.ID},
			})
		}
	}
	return out, nil
}

func orderBy(q store.Query) clause.OrderBy {
	dir := "ASC"
	if q.Direccion == store.Desc {
		dir = "DESC"
	}
	if q.OrderBy == "" {
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}, Desc: dir == "DESC"}}}
	}
	return clause.OrderBy{Expression: clause.Expr{
		SQL:                campoSQL + " " + dir + ", id " + dir,
		Vars:               []any{jsonPath(q.OrderBy)},
		WithoutParentheses: true,
	}}
}

// jsonPath renders a dotted field as a postgres text[] literal.
func jsonPath(campo string) string {
	return "{" + strings.Join(strings.Split(campo, "."), ",") + "}"
}

func jsonValue(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("pgstore: valor %v: %w", v, err)
	}
	return string(raw), nil
}

func toAnySlice(v any) []any {
	switch x := v.(type) {
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	}
	return nil
}

func toDocumento(d documento) store.Documento {
	return store.Documento{ID: d.ID, Datos: map[string]any(d.Datos)}
}
