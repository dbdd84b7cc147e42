package cli

import (
	"github.com/spf13/cobra"

	"github.com/recetapp/recetapp/internal/client/discover"
)

func newDiscoverCommand(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Muestra recetas públicas aleatorias de Spoonacular",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := a.discover.Random(cmd.Context(), count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range recipes {
				printf(out, "%s (%d min, %d raciones)\n", r.Title, r.ReadyInMinutes, r.Servings)
				for _, ing := range r.ExtendedIngredients {
					printf(out, "  • %s\n", ing.Original)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", discover.DefaultCount, "número de recetas")

	return cmd
}
