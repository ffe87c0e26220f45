// Package site serves the server-rendered HTML pages.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/pokedex/internal/adapters/http/middleware"
	"github.com/okian/pokedex/internal/adapters/repository"
	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/pkg/logger"
)

// Error constants
var (
	ErrTemplate  = errors.New("template failed")
	ErrBadLevel  = errors.New("level must be a whole number")
	ErrEmptyName = errors.New("pokemon name is empty")
)

// Dependencies are the operations the pages need.
type Dependencies interface {
	ListCreatures(ctx context.Context) ([]model.Creature, error)
	GetCreature(ctx context.Context, name string) (model.Creature, error)
	CreateCreature(ctx context.Context, in model.NewCreature) (model.Creature, error)
	UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error)
	DeleteCreature(ctx context.Context, name string) (repository.DeleteResult, error)
	CreateUser(ctx context.Context, in model.NewUser) (model.User, error)
}

// Handler renders pages and handles form submissions.
type Handler struct {
	deps  Dependencies
	log   logger.Logger
	pages map[string]*template.Template
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger used for failed page actions.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler parses the embedded templates.
func NewHandler(deps Dependencies, opts ...Option) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &Handler{deps: deps, log: logger.Nop(), pages: pages}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register attaches the page routes to mux. It owns the "/" catch-all, so
// register it after every other route set.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("site: nil mux")
	}
	m := middleware.Metrics

	mux.HandleFunc("GET /{$}", m(h.page(pageIndex, "Home"), "index"))
	mux.HandleFunc("GET /pokemons", m(h.HandlePokemons, "pokemons"))
	mux.HandleFunc("GET /one-pokemon/{name}", m(h.HandleOnePokemon, "one_pokemon"))
	mux.HandleFunc("GET /create-pokemon-form", m(h.page(pageCreatePokemon, "Add a pokemon"), "create_pokemon_form"))
	mux.HandleFunc("POST /create-pokemon", m(h.HandleCreatePokemon, "create_pokemon"))
	mux.HandleFunc("GET /update-pokemon-form/{name}", m(h.HandleUpdateForm, "update_pokemon_form"))
	mux.HandleFunc("PATCH /update-pokemon/{name}", m(h.HandleUpdatePokemon, "update_pokemon"))
	mux.HandleFunc("DELETE /delete-pokemon/{name}", m(h.HandleDeletePokemon, "delete_pokemon"))
	mux.HandleFunc("GET /sign-up", m(h.page(pageSignup, "Sign up"), "sign_up"))
	mux.HandleFunc("POST /create-user", m(h.HandleCreateUser, "create_user"))
	mux.HandleFunc("GET /log-in", m(h.page(pageLogIn, "Log in"), "log_in"))
	mux.HandleFunc("/", m(h.HandleNotFound, "not_found"))
}

func (h *Handler) page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.write(w, r, http.StatusOK, name, pageData{Title: title})
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	body, err := render(h.pages, name, data)
	if err != nil {
		h.log.Error(r.Context(), "rendering page failed", logger.String("page", name), logger.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func onePokemonPath(name string) string {
	return "/one-pokemon/" + url.PathEscape(name)
}

// HandlePokemons lists every pokemon.
func (h *Handler) HandlePokemons(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.ListCreatures(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "listing pokemons failed", logger.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.write(w, r, http.StatusOK, pagePokemons, pageData{Title: "Pokemons", Pokemons: all})
}

// HandleOnePokemon shows one pokemon. A missing name renders the empty state.
func (h *Handler) HandleOnePokemon(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data := pageData{Title: name, Name: name}
	c, err := h.deps.GetCreature(r.Context(), name)
	switch {
	case err == nil:
		data.Pokemon = &c
	case errors.Is(err, repository.ErrNotFound):
	default:
		h.log.Error(r.Context(), "loading pokemon failed", logger.String("name", name), logger.Error(err))
		h.write(w, r, http.StatusInternalServerError, pageOnePokemon, data)
		return
	}
	h.write(w, r, http.StatusOK, pageOnePokemon, data)
}

// HandleCreatePokemon stores the submitted form and redirects to the new page.
func (h *Handler) HandleCreatePokemon(w http.ResponseWriter, r *http.Request) {
	in, err := newCreatureFromForm(r)
	if err == nil {
		var c model.Creature
		if c, err = h.deps.CreateCreature(r.Context(), in); err == nil {
			redirect(w, r, onePokemonPath(c.Name))
			return
		}
	}
	h.log.Warn(r.Context(), "creating pokemon failed", logger.Error(err))
	redirect(w, r, "/pokemons")
}

// HandleUpdateForm renders the edit form prefilled with the current values.
func (h *Handler) HandleUpdateForm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c, err := h.deps.GetCreature(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.HandleNotFound(w, r)
			return
		}
		h.log.Error(r.Context(), "loading pokemon failed", logger.String("name", name), logger.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.write(w, r, http.StatusOK, pageUpdatePokemon, pageData{Title: "Edit " + c.Name, Name: name, Pokemon: &c})
}

// HandleUpdatePokemon applies the non-empty form fields.
func (h *Handler) HandleUpdatePokemon(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	patch, err := patchFromForm(r)
	if err == nil {
		var c model.Creature
		if c, err = h.deps.UpdateCreature(r.Context(), name, patch); err == nil {
			redirect(w, r, onePokemonPath(c.Name))
			return
		}
	}
	h.log.Warn(r.Context(), "updating pokemon failed", logger.String("name", name), logger.Error(err))
	redirect(w, r, onePokemonPath(name))
}

// HandleDeletePokemon removes the pokemon and always returns to the list.
func (h *Handler) HandleDeletePokemon(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := h.deps.DeleteCreature(r.Context(), name); err != nil {
		h.log.Warn(r.Context(), "deleting pokemon failed", logger.String("name", name), logger.Error(err))
	}
	redirect(w, r, "/pokemons")
}

// HandleCreateUser registers an account from the signup form.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	in := model.NewUser{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if _, err := h.deps.CreateUser(r.Context(), in); err != nil {
		h.log.Warn(r.Context(), "signup failed", logger.String("username", in.Username), logger.Error(err))
		redirect(w, r, "/")
		return
	}
	redirect(w, r, "/log-in")
}

// HandleNotFound renders the 404 page.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusNotFound, pageNotFound, pageData{Title: "Not found", Path: r.URL.Path})
}

func newCreatureFromForm(r *http.Request) (model.NewCreature, error) {
	in := model.NewCreature{
		Name:  r.PostFormValue("name"),
		Type:  r.PostFormValue("type"),
		Moves: model.SplitMoves(r.PostFormValue("moves")),
	}
	if strings.TrimSpace(in.Name) == "" {
		return in, ErrEmptyName
	}
	level, err := formLevel(r)
	if err != nil {
		return in, err
	}
	if level != nil {
		in.Level = *level
	}
	return in, nil
}

// patchFromForm builds a patch from the fields the user actually filled in.
func patchFromForm(r *http.Request) (model.CreaturePatch, error) {
	var p model.CreaturePatch
	if v := strings.TrimSpace(r.PostFormValue("name")); v != "" {
		p.Name = &v
	}
	if v := strings.TrimSpace(r.PostFormValue("type")); v != "" {
		p.Type = &v
	}
	if raw := r.PostFormValue("moves"); strings.TrimSpace(raw) != "" {
		moves := model.SplitMoves(raw)
		p.Moves = &moves
	}
	level, err := formLevel(r)
	if err != nil {
		return p, err
	}
	p.Level = level
	return p, nil
}

func formLevel(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.PostFormValue("level"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadLevel, raw)
	}
	return &n, nil
}
