package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/service"
)

// Arbol is the YAML seed file:
//
//	paises:
//	  - nombre: Venezuela
//	    estados:
//	      - nombre: Aragua
//	        ciudades: [Turmero, Maracay]
type Arbol struct {
	Paises []PaisSemilla `yaml:"paises"`
}

type PaisSemilla struct {
	Nombre  string          `yaml:"nombre"`
	Estados []EstadoSemilla `yaml:"estados"`
}

type EstadoSemilla struct {
	Nombre   string   `yaml:"nombre"`
	Ciudades []string `yaml:"ciudades"`
}

var sembrarCmd = &cobra.Command{
	Use:   "sembrar <archivo.yaml>",
	Short: "Load a País/Estado/Ciudad tree from YAML",
	Long: `Load a País/Estado/Ciudad tree from YAML, top-down. Entries that
already exist under the same parent (same name) are reused, so the file
can be applied more than once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arbol, err := leerArbol(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		_, backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close(context.Background())

		svc := service.NewUbicacionService(repository.NewUbicacionRepository(repository.NewColecciones(backend, nil)))
		n, err := sembrar(ctx, svc, arbol)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d documentos creados\n", n)
		return nil
	},
}

func leerArbol(path string) (Arbol, error) {
	var a Arbol
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// sembrar creates whatever part of the tree is missing and returns how many
// documents it created.
func sembrar(ctx context.Context, svc service.UbicacionService, arbol Arbol) (int, error) {
	creados := 0
	paises, err := svc.Paises(ctx)
	if err != nil {
		return 0, err
	}
	for _, ps := range arbol.Paises {
		paisID := ""
		for _, p := range paises {
			if mismoNombre(p.Nombre, ps.Nombre) {
				paisID = p.ID
				break
			}
		}
		if paisID == "" {
			p, err := svc.CrearPais(ctx, dto.CrearPaisRequest{Nombre: ps.Nombre})
			if err != nil {
				return creados, fmt.Errorf("pais %q: %w", ps.Nombre, err)
			}
			paisID = p.ID
			creados++
		}

		estados, err := svc.Estados(ctx, paisID)
		if err != nil {
			return creados, err
		}
		for _, es := range ps.Estados {
			estadoID := ""
			for _, e := range estados {
				if mismoNombre(e.Nombre, es.Nombre) {
					estadoID = e.ID
					break
				}
			}
			if estadoID == "" {
				e, err := svc.CrearEstado(ctx, dto.CrearEstadoRequest{Nombre: es.Nombre, PaisID: paisID})
				if err != nil {
					return creados, fmt.Errorf("estado %q: %w", es.Nombre, err)
				}
				estadoID = e.ID
				creados++
			}

			ciudades, err := svc.Ciudades(ctx, estadoID)
			if err != nil {
				return creados, err
			}
		ciudad:
			for _, nombre := range es.Ciudades {
				for _, c := range ciudades {
					if mismoNombre(c.Nombre, nombre) {
						continue ciudad
					}
				}
				if _, err := svc.CrearCiudad(ctx, dto.CrearCiudadRequest{Nombre: nombre, EstadoID: estadoID}); err != nil {
					return creados, fmt.Errorf("ciudad %q: %w", nombre, err)
				}
				creados++
			}
		}
	}
	return creados, nil
}

func mismoNombre(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
