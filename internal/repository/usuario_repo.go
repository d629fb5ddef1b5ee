package repository

import (
	"context"
	"strings"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByCorreo(ctx context.Context, correo string) (*model.Usuario, error)
	FindByID(ctx context.Context, id string) (*model.Usuario, error)
	Count(ctx context.Context) (int, error)
}

type usuarioRepo struct{ col *store.Collection[model.Usuario] }

func NewUsuarioRepository(col *store.Collection[model.Usuario]) UsuarioRepository {
	return &usuarioRepo{col: col}
}

// Create stores u and sets its id. Correo is stored lowercased.
func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	u.Correo = strings.ToLower(strings.TrimSpace(u.Correo))
	id, err := r.col.Create(ctx, *u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// FindByCorreo returns nil, nil when no user has that address.
func (r *usuarioRepo) FindByCorreo(ctx context.Context, correo string) (*model.Usuario, error) {
	page, err := r.col.Find(ctx, []store.Clause{
		store.Where("correo", store.Igual, strings.ToLower(strings.TrimSpace(correo))),
	}, &store.Pagination{PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return &page.Items[0], nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id string) (*model.Usuario, error) {
	return r.col.GetByID(ctx, id)
}

func (r *usuarioRepo) Count(ctx context.Context) (int, error) {
	return r.col.Count(ctx)
}
