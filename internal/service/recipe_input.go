package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/recetapp/recetapp/internal/model"
)

// Form field names shared with the HTTP layer.
const (
	FieldNombre       = "nombre"
	FieldDescripcion  = "descripcion"
	FieldComensales   = "comensales"
	FieldTiempo       = "tiempo"
	FieldIngredientes = "ingredientes"
	FieldPasos        = "pasos"
)

// Field is a raw form value plus whether its key was sent at all.
type Field struct {
	Value string
	Set   bool
}

// Provided marks v as sent.
func Provided(v string) Field {
	return Field{Value: v, Set: true}
}

// RecipeInput carries the raw text fields of a create or update request.
// Ingredientes and Pasos hold JSON-encoded string arrays.
type RecipeInput struct {
	Nombre       Field
	Descripcion  Field
	Comensales   Field
	Tiempo       Field
	Ingredientes Field
	Pasos        Field
}

// recipeFields is RecipeInput after validation. Nil members were not sent.
type recipeFields struct {
	nombre       *string
	descripcion  *string
	comensales   *int
	tiempo       *string
	ingredientes []string
	pasos        []string
	hasIngr      bool
	hasPasos     bool
}

// parse validates every provided field. With requireAll, missing fields are
// errors too.
func (in RecipeInput) parse(requireAll bool) (*recipeFields, error) {
	var out recipeFields
	var err error

	text := []struct {
		name  string
		field Field
		dst   **string
	}{
		{FieldNombre, in.Nombre, &out.nombre},
		{FieldDescripcion, in.Descripcion, &out.descripcion},
		{FieldTiempo, in.Tiempo, &out.tiempo},
	}
	for _, f := range text {
		if !f.field.Set {
			if requireAll {
				return nil, invalid(f.name, "el campo es obligatorio")
			}
			continue
		}
		v := strings.TrimSpace(f.field.Value)
		if v == "" {
			return nil, invalid(f.name, "el campo no puede estar vacío")
		}
		if err := checkText(f.name, v); err != nil {
			return nil, err
		}
		*f.dst = &v
	}

	if in.Comensales.Set || requireAll {
		n, err := parseComensales(in.Comensales)
		if err != nil {
			return nil, err
		}
		out.comensales = &n
	}

	if in.Ingredientes.Set || requireAll {
		out.ingredientes, err = parseList(FieldIngredientes, in.Ingredientes)
		if err != nil {
			return nil, err
		}
		out.hasIngr = true
		if requireAll && len(out.ingredientes) == 0 {
			return nil, invalid(FieldIngredientes, "la receta necesita al menos un ingrediente")
		}
	}

	if in.Pasos.Set || requireAll {
		out.pasos, err = parseList(FieldPasos, in.Pasos)
		if err != nil {
			return nil, err
		}
		out.hasPasos = true
	}

	return &out, nil
}

func parseComensales(f Field) (int, error) {
	v := strings.TrimSpace(f.Value)
	if !f.Set || v == "" {
		return 0, invalid(FieldComensales, "el campo es obligatorio")
	}
	// The column is a 32-bit INTEGER.
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil || n <= 0 {
		return 0, invalid(FieldComensales, "debe ser un número entero positivo")
	}
	return int(n), nil
}

// checkText rejects values Postgres text columns cannot hold.
func checkText(name, v string) error {
	if !utf8.ValidString(v) {
		return invalid(name, "el texto no es UTF-8 válido")
	}
	if strings.ContainsRune(v, 0) {
		return invalid(name, "el texto contiene caracteres no permitidos")
	}
	return nil
}

func parseList(name string, f Field) ([]string, error) {
	v := strings.TrimSpace(f.Value)
	if !f.Set || v == "" {
		return nil, invalid(name, "el campo es obligatorio")
	}

	// Checked before decoding: json.Unmarshal silently replaces invalid UTF-8.
	if err := checkText(name, v); err != nil {
		return nil, err
	}

	var items []string
	if err := json.Unmarshal([]byte(v), &items); err != nil {
		return nil, invalid(name, "debe ser una lista JSON de textos")
	}
	if items == nil {
		return nil, invalid(name, "debe ser una lista JSON de textos")
	}
	for _, item := range items {
		if err := checkText(name, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// newRecipe builds a recipe from fully validated fields.
func (f *recipeFields) newRecipe() *model.Recipe {
	return &model.Recipe{
		Nombre:       *f.nombre,
		Descripcion:  *f.descripcion,
		Comensales:   *f.comensales,
		Tiempo:       *f.tiempo,
		Ingredientes: f.ingredientes,
		Pasos:        f.pasos,
	}
}

// apply overwrites the provided fields of r.
func (f *recipeFields) apply(r *model.Recipe) {
	if f.nombre != nil {
		r.Nombre = *f.nombre
	}
	if f.descripcion != nil {
		r.Descripcion = *f.descripcion
	}
	if f.comensales != nil {
		r.Comensales = *f.comensales
	}
	if f.tiempo != nil {
		r.Tiempo = *f.tiempo
	}
	if f.hasIngr {
		r.Ingredientes = f.ingredientes
	}
	if f.hasPasos {
		r.Pasos = f.pasos
	}
}
