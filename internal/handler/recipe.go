package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/recetapp/recetapp/internal/auth"
	"github.com/recetapp/recetapp/internal/handler/dto"
	"github.com/recetapp/recetapp/internal/model"
	"github.com/recetapp/recetapp/internal/service"
	"github.com/recetapp/recetapp/internal/upload"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 1 << 20

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	svc    *service.RecipeService
	logger *slog.Logger
	errs   errorMapper
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger, isDevelopment bool) *RecipeHandler {
	return &RecipeHandler{
		svc:    svc,
		logger: logger,
		errs:   errorMapper{logger: logger, isDevelopment: isDevelopment},
	}
}

// Create handles POST /api/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	input, img, err := readRecipeForm(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), input, img)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	h.logger.Info("recipe_create_request",
		"recipe_id", recipe.ID,
		"by", auth.EmailFromContext(r.Context()),
		"has_image", recipe.Imagen != nil,
	)

	writeJSON(w, http.StatusCreated, dto.RecipeCreatedResponse{
		Message: "Receta creada correctamente",
		ID:      recipe.ID,
		Recipe:  recipe,
	})
}

// List handles GET /api/recipes.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.ListRecipes(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []*model.Recipe{}
	}

	writeJSON(w, http.StatusOK, recipes)
}

// Get handles GET /api/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Update handles PUT /api/recipes/{id}.
// Only form keys that are present are applied.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer cleanupForm(r)

	input, img, err := readRecipeForm(r)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), id, input, img)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	h.logger.Info("recipe_update_request",
		"recipe_id", id,
		"by", auth.EmailFromContext(r.Context()),
		"has_image", img != nil,
	)

	writeJSON(w, http.StatusOK, dto.RecipeUpdatedResponse{
		Message: "Receta actualizada correctamente",
		Recipe:  recipe,
	})
}

// Delete handles DELETE /api/recipes/{id}.
// Deleting a recipe that does not exist still succeeds.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteRecipe(r.Context(), id); err != nil {
		h.errs.write(w, r, err)
		return
	}

	h.logger.Info("recipe_delete_request",
		"recipe_id", id,
		"by", auth.EmailFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Receta eliminada correctamente"})
}

// readRecipeForm parses a multipart or urlencoded body.
func readRecipeForm(r *http.Request) (service.RecipeInput, *upload.Image, error) {
	var values url.Values
	var img *upload.Image

	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return service.RecipeInput{}, nil, formError(err)
		}
		values = r.PostForm
	case err != nil:
		return service.RecipeInput{}, nil, formError(err)
	default:
		img, err = upload.ParseImage(r.MultipartForm)
		if err != nil {
			return service.RecipeInput{}, nil, err
		}
		values = r.MultipartForm.Value
	}

	input, err := recipeInput(values)
	if err != nil {
		return service.RecipeInput{}, nil, err
	}
	return input, img, nil
}

// cleanupForm removes temporary files of a parsed multipart body.
func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func formError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	return fmt.Errorf("%w: malformed form: %v", service.ErrInvalidInput, err)
}

// recipeInput marks a field as provided iff its key is in the form.
// A key sent more than once is rejected rather than resolved.
func recipeInput(values url.Values) (service.RecipeInput, error) {
	var dup string
	field := func(name string) service.Field {
		vs, ok := values[name]
		switch {
		case !ok:
			return service.Field{}
		case len(vs) == 0:
			return service.Provided("")
		case len(vs) > 1 && dup == "":
			dup = name
		}
		return service.Provided(vs[0])
	}

	in := service.RecipeInput{
		Nombre:       field(service.FieldNombre),
		Descripcion:  field(service.FieldDescripcion),
		Comensales:   field(service.FieldComensales),
		Tiempo:       field(service.FieldTiempo),
		Ingredientes: field(service.FieldIngredientes),
		Pasos:        field(service.FieldPasos),
	}
	if dup != "" {
		return service.RecipeInput{}, &service.ValidationError{
			Field:   dup,
			Message: "el campo solo puede enviarse una vez",
		}
	}
	return in, nil
}
