package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recetapp/recetapp/internal/client/api"
	"github.com/recetapp/recetapp/internal/model"
)

// recipeFlags backs the add and edit commands.
type recipeFlags struct {
	nombre       string
	descripcion  string
	comensales   int
	tiempo       string
	ingredientes []string
	pasos        []string
	imagen       string
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nombre, "nombre", "", "nombre de la receta")
	cmd.Flags().StringVar(&f.descripcion, "descripcion", "", "descripción")
	cmd.Flags().IntVar(&f.comensales, "comensales", 0, "número de comensales")
	cmd.Flags().StringVar(&f.tiempo, "tiempo", "", "tiempo de preparación")
	cmd.Flags().StringArrayVar(&f.ingredientes, "ingrediente", nil, "ingrediente (repetible)")
	cmd.Flags().StringArrayVar(&f.pasos, "paso", nil, "paso (repetible)")
	cmd.Flags().StringVar(&f.imagen, "imagen", "", "ruta de una imagen jpg, png, webp o gif")
}

// form includes only the flags the user set. The returned closer releases
// the image file.
func (f *recipeFlags) form(cmd *cobra.Command) (api.RecipeForm, func(), error) {
	var form api.RecipeForm
	changed := cmd.Flags().Changed

	if changed("nombre") {
		form.Nombre = &f.nombre
	}
	if changed("descripcion") {
		form.Descripcion = &f.descripcion
	}
	if changed("comensales") {
		form.Comensales = &f.comensales
	}
	if changed("tiempo") {
		form.Tiempo = &f.tiempo
	}
	// An empty value ("--paso ''") sends an empty list.
	if changed("ingrediente") {
		form.Ingredientes = nonBlank(f.ingredientes)
	}
	if changed("paso") {
		form.Pasos = nonBlank(f.pasos)
	}

	closeFn := func() {}
	if f.imagen != "" {
		file, err := os.Open(f.imagen)
		if err != nil {
			return api.RecipeForm{}, closeFn, fmt.Errorf("no se pudo abrir la imagen: %w", err)
		}
		form.Image = &api.Image{Filename: filepath.Base(f.imagen), Data: file}
		closeFn = func() { _ = file.Close() }
	}
	return form, closeFn, nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}

func newRecipesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recetas"},
		Short:   "Gestiona las recetas del servidor",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista todas las recetas, de la más reciente a la más antigua",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := a.session.RefreshRecipes(cmd.Context())
			if err != nil {
				return err
			}
			printRecipeList(cmd.OutOrStdout(), recipes)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Muestra una receta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.session.Client().GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRecipe(cmd.OutOrStdout(), r, a.session.Client().ImageURL(r.ImagePath()))
			return nil
		},
	})

	add := &recipeFlags{}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Crea una receta",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, closeImage, err := add.form(cmd)
			if err != nil {
				return err
			}
			defer closeImage()

			r, err := a.session.Client().CreateRecipe(cmd.Context(), form)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Receta creada: %s\n", r.ID)
			return nil
		},
	}
	add.register(addCmd)
	cmd.AddCommand(addCmd)

	edit := &recipeFlags{}
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Modifica solo los campos indicados de una receta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, closeImage, err := edit.form(cmd)
			if err != nil {
				return err
			}
			defer closeImage()

			r, err := a.session.Client().UpdateRecipe(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Receta actualizada: %s\n", r.ID)
			return nil
		},
	}
	edit.register(editCmd)
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Elimina una receta (sus copias en grupos se conservan)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.session.DeleteRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Receta eliminada\n")
			return nil
		},
	})

	return cmd
}

func printRecipeList(w io.Writer, recipes []model.Recipe) {
	if len(recipes) == 0 {
		printf(w, "No hay recetas\n")
		return
	}
	for _, r := range recipes {
		printf(w, "%s  %s (%d comensales, %s)\n", r.ID, r.Nombre, r.Comensales, r.Tiempo)
	}
}

func printRecipe(w io.Writer, r *model.Recipe, imageURL string) {
	printf(w, "%s\n%s\n\n", r.Nombre, r.Descripcion)
	printf(w, "Comensales: %d\nTiempo: %s\n", r.Comensales, r.Tiempo)
	if imageURL != "" {
		printf(w, "Imagen: %s\n", imageURL)
	}
	printf(w, "\nIngredientes:\n")
	for _, it := range r.Ingredientes {
		printf(w, "  - %s\n", it)
	}
	printf(w, "\nPasos:\n")
	for i, p := range r.Pasos {
		printf(w, "  %d. %s\n", i+1, p)
	}
}
