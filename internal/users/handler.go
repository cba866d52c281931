package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veridian-id/veridian/internal/accounts"
	"github.com/veridian-id/veridian/internal/auth"
	"github.com/veridian-id/veridian/internal/authz"
	"github.com/veridian-id/veridian/internal/platform/httpx"
	"github.com/veridian-id/veridian/internal/shared"
)

// Handler manages account administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authzMW}
}

// MountRoutes registers user administration routes. The caller mounts
// these behind the authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.authz.RequirePermission("user:list")).Get("/", h.listUsers)
	r.With(h.authz.RequirePermission("user:read")).Get("/{id}", h.getUser)
	r.With(h.authz.RequirePermission("user:suspend")).Post("/{id}/suspend", h.suspendUser)
	r.With(h.authz.RequirePermission("user:ban")).Post("/{id}/ban", h.banUser)
	r.With(h.authz.RequirePermission("user:update")).Post("/{id}/activate", h.activateUser)
	r.With(h.authz.RequirePermission("user:delete")).Delete("/{id}", h.deleteUser)
}

type userResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
}

type listUsersResponse struct {
	Users      []userResponse    `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

func toUserResponse(u accounts.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Status:        string(u.Status),
		EmailVerified: u.EmailVerified,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	users, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listUsersResponse{Users: make([]userResponse, 0, len(users)), Pagination: pagination}
	for _, u := range users {
		out.Users = append(out.Users, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.service.Suspend)
}

func (h *Handler) banUser(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.service.Ban)
}

func (h *Handler) activateUser(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.service.Activate)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := op(r.Context(), actorID(r), id); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("change user status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "status updated"})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), actorID(r), id); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func actorID(r *http.Request) int64 {
	if user := auth.UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return 0
}
