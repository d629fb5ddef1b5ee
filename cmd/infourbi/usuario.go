package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store"
)

var usuarioFlags dto.RegistroRequest

var usuarioCmd = &cobra.Command{
	Use:   "usuario",
	Short: "Manage user accounts",
}

var usuarioCrearCmd = &cobra.Command{
	Use:   "crear",
	Short: "Create a user that can sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close(context.Background())
		return crearUsuario(ctx, cfg, backend, usuarioFlags, cmd.OutOrStdout())
	},
}

func init() {
	f := usuarioCrearCmd.Flags()
	f.StringVar(&usuarioFlags.Nombre, "nombre", "", "display name")
	f.StringVar(&usuarioFlags.Correo, "correo", "", "email used to sign in")
	f.StringVar(&usuarioFlags.Password, "password", "", "password (at least 6 characters)")
	_ = usuarioCrearCmd.MarkFlagRequired("correo")
	_ = usuarioCrearCmd.MarkFlagRequired("password")
	usuarioCmd.AddCommand(usuarioCrearCmd)
}

// crearUsuario registers the account through the auth service, so the
// same email checks apply as on /v1/auth/registro. No welcome email is sent.
func crearUsuario(ctx context.Context, cfg *config.Config, backend store.Backend, req dto.RegistroRequest, out io.Writer) error {
	if req.Nombre == "" {
		req.Nombre = req.Correo
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("la contraseña debe tener al menos 6 caracteres")
	}
	cols := repository.NewColecciones(backend, nil)
	svc := service.NewAuthService(repository.NewUsuarioRepository(cols.Usuarios), cfg, service.AuthDeps{})
	resp, err := svc.Registrar(ctx, req)
	if err != nil {
		var ae *service.AuthError
		if errors.As(err, &ae) {
			return fmt.Errorf("%s: %s", ae.Codigo, ae.Mensaje())
		}
		return err
	}
	fmt.Fprintf(out, "usuario %s creado (%s)\n", resp.Usuario.Correo, resp.Usuario.ID)
	return nil
}
