package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/okian/pokedex/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names, one per file under templates/.
const (
	pageIndex         = "index"
	pagePokemons      = "pokemons"
	pageOnePokemon    = "one-pokemon"
	pageCreatePokemon = "create-pokemon"
	pageUpdatePokemon = "update-pokemon"
	pageSignup        = "signup"
	pageLogIn         = "log-in"
	pageNotFound      = "404"
)

var pageNames = []string{
	pageIndex, pagePokemons, pageOnePokemon, pageCreatePokemon,
	pageUpdatePokemon, pageSignup, pageLogIn, pageNotFound,
}

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"joinMoves":  func(moves []string) string { return strings.Join(moves, ", ") },
}

// pageData is handed to every template.
type pageData struct {
	Title    string
	Path     string
	Name     string
	Pokemon  *model.Creature
	Pokemons []model.Creature
}

// parseTemplates pairs the shared layout with each page.
func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		out[name] = t
	}
	return out, nil
}

func render(pages map[string]*template.Template, name string, data pageData) ([]byte, error) {
	t, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown page %q", ErrTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	return buf.Bytes(), nil
}
