package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodySize = 1 << 20

type handler struct {
	svc    *Service
	logger logging.Logger
}

// NewRouter mounts the authentication API under /api.
func NewRouter(svc *Service, logger logging.Logger) http.Handler {
	h := &handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/register", h.register)
			r.Post("/reset-password", h.resetPassword)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(svc, logger))
				r.Get("/me", h.me)
				r.Post("/logout", h.logout)
				r.Post("/change-password", h.changePassword)
				r.Post("/delete-account", h.deleteAccount)
			})
		})
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrBadCredentials):
		writeRejection(w, "Invalid username or password")
		return
	case err != nil:
		h.internal(w, r, err)
		return
	}
	writeSession(w, sess, "Login successful")
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.svc.Register(r.Context(), req)
	switch {
	case errors.Is(err, ErrAlreadyExists):
		writeRejection(w, "Username already exists")
		return
	case errors.Is(err, ErrInvalidInput):
		writeRejection(w, "Username and a password of at least 6 characters are required")
		return
	case err != nil:
		h.internal(w, r, err)
		return
	}
	writeSession(w, sess, "Registration successful")
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	h.svc.ResetPassword(r.Context(), req.Email)
	writeEnvelope(w, true, "If the address is registered, a reset link has been sent")
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.MeResponse{User: userFrom(r.Context()).View()})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), claimsFrom(r.Context()))
	writeEnvelope(w, true, "Logged out")
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.ChangePassword(r.Context(), userFrom(r.Context()).ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrWrongPassword):
		writeRejection(w, "Current password is incorrect")
	case errors.Is(err, ErrInvalidInput):
		writeRejection(w, "New password must be at least 6 characters")
	case err != nil:
		h.internal(w, r, err)
	default:
		writeEnvelope(w, true, "Password changed successfully")
	}
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteAccountRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.DeleteAccount(r.Context(), claimsFrom(r.Context()), req.Password)
	switch {
	case errors.Is(err, ErrWrongPassword):
		writeRejection(w, "Incorrect password")
	case err != nil:
		h.internal(w, r, err)
	default:
		writeEnvelope(w, true, "Account deleted")
	}
}

func (h *handler) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "request failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

func writeSession(w http.ResponseWriter, sess *Session, msg string) {
	ok := true
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Envelope: models.Envelope{Success: &ok, Message: msg},
		Token:    sess.Token,
		User:     sess.User.View(),
	})
}

func writeEnvelope(w http.ResponseWriter, success bool, msg string) {
	writeJSON(w, http.StatusOK, models.Envelope{Success: &success, Message: msg})
}

// writeRejection answers a business-rule failure: 200 with success false.
func writeRejection(w http.ResponseWriter, msg string) {
	writeEnvelope(w, false, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	f := false
	writeJSON(w, status, models.Envelope{Success: &f, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
