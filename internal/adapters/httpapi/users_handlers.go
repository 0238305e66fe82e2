package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wayfare-app/wayfare-api/internal/app/users"
	"github.com/wayfare-app/wayfare-api/internal/domain"
)

type userHandlers struct {
	svc UserService
}

type userDTO struct {
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *userHandlers) list(w http.ResponseWriter, r *http.Request) {
	us, err := h.svc.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]userDTO, 0, len(us))
	for _, u := range us {
		out = append(out, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *userHandlers) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (h *userHandlers) add(w http.ResponseWriter, r *http.Request) {
	store, ok := h.svc.(UserStore)
	if !ok {
		writeError(w, r, http.StatusMethodNotAllowed, "READ_ONLY", "user directory is read only", nil)
		return
	}
	in, ok := decodeUserWrite(w, r)
	if !ok {
		return
	}
	u, err := store.Add(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (h *userHandlers) update(w http.ResponseWriter, r *http.Request) {
	store, ok := h.svc.(UserStore)
	if !ok {
		writeError(w, r, http.StatusMethodNotAllowed, "READ_ONLY", "user directory is read only", nil)
		return
	}
	in, ok := decodeUserWrite(w, r)
	if !ok {
		return
	}
	u, err := store.Update(r.Context(), chi.URLParam(r, "username"), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (h *userHandlers) delete(w http.ResponseWriter, r *http.Request) {
	store, ok := h.svc.(UserStore)
	if !ok {
		writeError(w, r, http.StatusMethodNotAllowed, "READ_ONLY", "user directory is read only", nil)
		return
	}
	if err := store.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeUserWrite(w http.ResponseWriter, r *http.Request) (*users.UserInput, bool) {
	var body userDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return nil, false
	}
	return &users.UserInput{
		Username:  body.Username,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}, true
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{
		Username:  u.Username,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
