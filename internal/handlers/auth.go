package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"storepress/internal/middleware"
	"storepress/internal/models"
	"storepress/internal/session"
	"storepress/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "StorePress"

// Auth serves login, logout, and two-factor enrollment. Every operator
// must complete TOTP verification before the session unlocks the rest of
// the admin API.
type Auth struct {
	users    *store.UserStore
	sessions *session.Store
}

// NewAuth creates the auth handler group.
func NewAuth(users *store.UserStore, sessions *session.Store) *Auth {
	return &Auth{users: users, sessions: sessions}
}

// Login handles POST /admin/login. A successful login creates a session
// that is not yet 2FA-verified; the response tells the client whether the
// user still has to enroll.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	user, err := h.users.FindByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "invalid email or password"})
		return
	}

	_, err = h.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	respondJSON(w, http.StatusOK, map[string]bool{"needs2FASetup": user.Needs2FASetup()})
}

// Logout handles POST /admin/logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// Me handles GET /admin/me: the authenticated operator's identity and
// session state, used by the admin client to bootstrap.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"userId":      sess.UserID,
		"email":       sess.Email,
		"displayName": sess.DisplayName,
		"role":        sess.Role,
		"twoFADone":   sess.TwoFADone,
		"csrfToken":   middleware.GetCSRFToken(r),
	})
}

// Setup2FA handles POST /admin/2fa/setup: generates a fresh TOTP secret,
// stores it against the user, and returns the otpauth URL. Re-running
// setup before verification replaces the pending secret.
func (h *Auth) Setup2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		respondError(w, fmt.Errorf("generate totp key: %w", err))
		return
	}

	if err := h.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"secret":     key.Secret(),
		"otpauthUrl": key.URL(),
	})
}

// QRCode2FA handles GET /admin/2fa/setup/qr: the pending enrollment's
// otpauth URL rendered as a PNG for authenticator apps to scan.
func (h *Auth) QRCode2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondError(w, models.Validation("run 2fa setup first"))
		return
	}

	otpauthURL := fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.PathEscape(totpIssuer), url.PathEscape(user.Email),
		*user.TOTPSecret, url.QueryEscape(totpIssuer))

	png, err := qrcode.Encode(otpauthURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, fmt.Errorf("encode qr code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// Verify2FA handles POST /admin/2fa/verify: checks a TOTP code against
// the stored secret, completes enrollment on first success, and unlocks
// the session.
func (h *Auth) Verify2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondError(w, models.Validation("run 2fa setup first"))
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "invalid verification code"})
		return
	}

	if !user.TOTPEnabled {
		if err := h.users.EnableTOTP(user.ID); err != nil {
			respondError(w, err)
			return
		}
	}

	sess.TwoFADone = true
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("2fa verified", "user_id", user.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
