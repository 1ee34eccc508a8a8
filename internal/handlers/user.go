package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/userhub/apiserver/internal/images"
	"github.com/userhub/apiserver/internal/services"
	"github.com/userhub/apiserver/internal/storage"
	"github.com/userhub/apiserver/internal/store"
	"github.com/userhub/apiserver/types"
)

var validate = validator.New()

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)

	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

type CreateUserRequest struct {
	Username     string `json:"username" validate:"required,min=2,max=24"`
	FirstName    string `json:"first_name" validate:"required,min=1,max=30"`
	LastName     string `json:"last_name" validate:"required,min=1,max=60"`
	Password     string `json:"password" validate:"required"`
	ProfileImage string `json:"profile_image" validate:"omitempty,url,startswith=https://"`
}

type UpdateUserRequest struct {
	Username     *string `json:"username" validate:"omitnil,min=2,max=24"`
	FirstName    *string `json:"first_name" validate:"omitnil,min=1,max=30"`
	LastName     *string `json:"last_name" validate:"omitnil,min=1,max=60"`
	Password     *string `json:"password" validate:"omitnil,min=1"`
	ProfileImage *string `json:"profile_image" validate:"omitnil,url,startswith=https://"`
}

type UserListResponse struct {
	Items []types.User `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.userService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeLookupError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Create(r.Context(), services.CreateUserParams{
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImage,
	})
	if err != nil {
		writeUpsertError(w, req.Username, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Update(r.Context(), id, services.UpdateUserParams{
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDeleted) {
			writeLookupError(w, id, err)
			return
		}
		username := ""
		if req.Username != nil {
			username = *req.Username
		}
		writeUpsertError(w, username, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDeleted) {
			writeLookupError(w, id, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeLookupError reports a missing user. A soft-deleted user is still
// a 404, with a message that preserves the distinction.
func writeLookupError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, store.ErrDeleted):
		writeError(w, http.StatusNotFound, fmt.Sprintf("User with id %s has been deleted.", id))
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("User with id %s was not found", id))
	default:
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
	}
}

// writeUpsertError maps create/update pipeline failures onto statuses:
// username conflicts are 409, bad image sources are 400, storage failures
// and everything else are 500.
func writeUpsertError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusConflict, fmt.Sprintf("The username %q is already in use.", username))
	case errors.Is(err, images.ErrInvalidSource):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrWrite):
		writeError(w, http.StatusInternalServerError, "failed to store profile image")
	default:
		writeError(w, http.StatusInternalServerError, "failed to save user")
	}
}
