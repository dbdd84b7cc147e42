package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGroupsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"grupos"},
		Short:   "Gestiona tus grupos de recetas (solo en este equipo)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista los grupos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groups.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				printf(out, "No hay grupos\n")
				return nil
			}
			for i, g := range groups {
				members, err := a.groups.Recipes(cmd.Context(), g.Nombre)
				if err != nil {
					return err
				}
				printf(out, "[%d] %s (%d recetas)\n", i, g.Nombre, len(members))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create NOMBRE",
		Short: "Crea un grupo vacío",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.groups.Create(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Grupo creado\n")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete INDICE",
		Short: "Elimina el grupo en la posición indicada por 'groups list'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("índice no válido: %s", args[0])
			}
			if _, err := a.groups.Delete(cmd.Context(), idx); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Grupo eliminado\n")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show NOMBRE",
		Short: "Muestra las recetas guardadas en un grupo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.groups.Recipes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRecipeList(cmd.OutOrStdout(), members)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NOMBRE RECETA_ID",
		Short: "Guarda una copia de una receta del servidor en el grupo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := a.session.Client().GetRecipe(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if _, err := a.groups.AddRecipe(cmd.Context(), args[0], *recipe); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Receta añadida al grupo\n")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NOMBRE RECETA_ID",
		Short: "Quita una receta del grupo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.groups.RemoveRecipe(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Receta quitada del grupo\n")
			return nil
		},
	})

	return cmd
}
