package api

import (
	"net/http"

	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

type UserHandler struct {
	service domain.UserService
	logger  logger.Logger
}

func NewUserHandler(service domain.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.UserRegister
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid signup body", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login is not implemented.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "Login is not implemented")
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetUsers(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	var req domain.UserRegister
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid user update body", map[string]interface{}{"id": id, "error": err.Error()})
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	res, err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, limit Limit) {
	mux.Handle("POST /signup", limit(GroupSignup, http.HandlerFunc(h.Signup)))
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /users", h.GetUsers)
	mux.HandleFunc("GET /users/{user_id}", h.GetUser)
	mux.Handle("PUT /users/{user_id}/update", limit(GroupWrite, http.HandlerFunc(h.UpdateUser)))
	mux.Handle("DELETE /users/{user_id}/delete", limit(GroupWrite, http.HandlerFunc(h.DeleteUser)))
}
