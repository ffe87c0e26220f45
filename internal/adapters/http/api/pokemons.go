package api

import (
	"context"
	"net/http"

	"github.com/okian/pokedex/internal/adapters/repository"
	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/pkg/logger"
)

// CreatureDependencies defines the pokemon operations the handlers call.
type CreatureDependencies interface {
	ListCreatures(ctx context.Context) ([]model.Creature, error)
	GetCreature(ctx context.Context, name string) (model.Creature, error)
	CreateCreature(ctx context.Context, in model.NewCreature) (model.Creature, error)
	UpdateCreature(ctx context.Context, name string, patch model.CreaturePatch) (model.Creature, error)
	DeleteCreature(ctx context.Context, name string) (repository.DeleteResult, error)
}

// CreatureHandler serves /api/pokemons.
type CreatureHandler struct {
	deps CreatureDependencies
	log  logger.Logger
}

// NewCreatureHandler creates a new pokemon handler.
func NewCreatureHandler(deps CreatureDependencies, l logger.Logger) *CreatureHandler {
	return &CreatureHandler{deps: deps, log: l}
}

// HandleList handles GET /api/pokemons.
func (h *CreatureHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.ListCreatures(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeSuccess(w, http.StatusOK, all)
}

// HandleGet handles GET /api/pokemons/{name}.
func (h *CreatureHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.GetCreature(r.Context(), r.PathValue("name"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeSuccess(w, http.StatusOK, c)
}

// HandleCreate handles POST /api/pokemons.
func (h *CreatureHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_pokemon"
	var in model.NewCreature
	if err := decodeJSON(op, r, w, &in); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	c, err := h.deps.CreateCreature(r.Context(), in)
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeSuccess(w, http.StatusOK, c)
}

// HandleUpdate handles PATCH /api/pokemons/{name}. Only the fields present
// in the body change.
func (h *CreatureHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_pokemon"
	var patch model.CreaturePatch
	if err := decodeJSON(op, r, w, &patch); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	c, err := h.deps.UpdateCreature(r.Context(), r.PathValue("name"), patch)
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeSuccess(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /api/pokemons/{name}. A missing name is not an
// error; the payload reports deletedCount 0.
func (h *CreatureHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.DeleteCreature(r.Context(), r.PathValue("name"))
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
