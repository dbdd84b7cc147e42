package model

import "testing"

func TestRecipe_CloneIsDeep(t *testing.T) {
	img := "/uploads/a.jpg"
	orig := &Recipe{
		ID:           "r1",
		Nombre:       "Tarta",
		Ingredientes: []string{"huevo", "harina"},
		Pasos:        []string{"mezclar"},
		Imagen:       &img,
	}

	c := orig.Clone()
	c.Ingredientes[0] = "leche"
	c.Pasos = append(c.Pasos, "hornear")
	*c.Imagen = "/uploads/b.jpg"

	if orig.Ingredientes[0] != "huevo" {
		t.Errorf("clone shares ingredientes with original: %v", orig.Ingredientes)
	}
	if len(orig.Pasos) != 1 {
		t.Errorf("clone shares pasos with original: %v", orig.Pasos)
	}
	if orig.ImagePath() != "/uploads/a.jpg" {
		t.Errorf("clone shares imagen with original: %s", orig.ImagePath())
	}
}

func TestRecipe_ImagePath(t *testing.T) {
	r := &Recipe{}
	if r.ImagePath() != "" {
		t.Errorf("expected empty image path, got %q", r.ImagePath())
	}
}

func TestUser_EmailOrEmpty(t *testing.T) {
	email := "a@b.com"
	u := &User{Email: &email}
	if u.EmailOrEmpty() != email {
		t.Errorf("expected %s, got %s", email, u.EmailOrEmpty())
	}

	u.Email = nil
	if u.EmailOrEmpty() != "" {
		t.Errorf("expected empty email, got %s", u.EmailOrEmpty())
	}
}
