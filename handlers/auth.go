package handlers

import (
	"net/http"

	"farmfinance/backend/models"
)

// Register creates an account and returns a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ok(envelope{"token": res.Token, "user": res.User}))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"token": res.Token, "user": res.User}))
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.profile(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"user": user}))
}

// UpdateAuthProfile is the profile update exposed under /auth.
func (h *Handler) UpdateAuthProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.updateProfile(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"user": user}))
}

func (h *Handler) profile(r *http.Request) (models.SafeUser, error) {
	id, err := caller(r)
	if err != nil {
		return models.SafeUser{}, err
	}
	return h.users.Profile(r.Context(), id)
}

func (h *Handler) updateProfile(r *http.Request) (models.SafeUser, error) {
	id, err := caller(r)
	if err != nil {
		return models.SafeUser{}, err
	}
	var patch models.ProfileUpdate
	if err := decodeJSON(r, &patch); err != nil {
		return models.SafeUser{}, err
	}
	return h.users.UpdateProfile(r.Context(), id, patch)
}
