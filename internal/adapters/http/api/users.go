package api

import (
	"context"
	"net/http"

	"github.com/okian/pokedex/internal/domain/model"
	"github.com/okian/pokedex/pkg/logger"
)

// UserDependencies defines the account operations the handlers call.
type UserDependencies interface {
	CreateUser(ctx context.Context, in model.NewUser) (model.User, error)
}

// userResponse is what signup returns. It never carries the password hash.
type userResponse struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	FavoritePokemon []string `json:"favoritePokemon"`
}

// UserHandler serves /api/users.
type UserHandler struct {
	deps UserDependencies
	log  logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies, l logger.Logger) *UserHandler {
	return &UserHandler{deps: deps, log: l}
}

// HandleCreate handles POST /api/users.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_user"
	var in model.NewUser
	if err := decodeJSON(op, r, w, &in); err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	u, err := h.deps.CreateUser(r.Context(), in)
	if err != nil {
		writeFailure(r.Context(), w, h.log, err)
		return
	}
	favorites := u.FavoritePokemon
	if favorites == nil {
		favorites = []string{}
	}
	writeSuccess(w, http.StatusCreated, userResponse{ID: u.ID, Username: u.Username, FavoritePokemon: favorites})
}
