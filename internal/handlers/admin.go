package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storepress/internal/middleware"
	"storepress/internal/models"
	"storepress/internal/publish"
	"storepress/internal/store"
)

// Admin serves the authenticated management API: themes, templates, the
// publish lifecycle, and user administration.
type Admin struct {
	themes    *store.ThemeStore
	templates *store.TemplateStore
	versions  *store.VersionStore
	users     *store.UserStore
	workflow  *publish.Workflow
}

// NewAdmin creates the admin handler group.
func NewAdmin(themes *store.ThemeStore, templates *store.TemplateStore, versions *store.VersionStore, users *store.UserStore, workflow *publish.Workflow) *Admin {
	return &Admin{themes: themes, templates: templates, versions: versions, users: users, workflow: workflow}
}

// actorID returns the authenticated operator's user ID from the session.
func actorID(r *http.Request) uuid.UUID {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.UserID
	}
	return uuid.Nil
}

// pathID parses a UUID path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, models.Validation("invalid " + name)
	}
	return id, nil
}

// --- Themes ---

// ListThemes handles GET /admin/themes.
func (h *Admin) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.List()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, themes)
}

// CreateTheme handles POST /admin/themes.
func (h *Admin) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, models.Validation("theme name is required"))
		return
	}
	if len(req.Name) > maxThemeNameLen {
		respondError(w, models.Validation("theme name is too long"))
		return
	}

	theme, err := h.themes.Create(req.Name, actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, theme)
}

// ActivateTheme handles POST /admin/themes/{id}/activate.
func (h *Admin) ActivateTheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.themes.Activate(id); err != nil {
		respondError(w, err)
		return
	}

	theme, err := h.themes.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, theme)
}

// ListTemplates handles GET /admin/themes/{id}/templates.
func (h *Admin) ListTemplates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	templates, err := h.templates.ListByTheme(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// --- Templates ---

// CreateTemplate handles POST /admin/templates. The operation is
// find-or-create on the (theme, page type, slug) key, so editors opening
// a page that was never edited get its template transparently.
func (h *Admin) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeID  uuid.UUID       `json:"themeId"`
		PageType models.PageType `json:"pageType"`
		Slug     string          `json:"slug"`
		Content  json.RawMessage `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	pageSlug, err := validatePageKey(req.PageType, req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := models.ValidateContent(req.Content); err != nil {
		respondError(w, err)
		return
	}

	theme, err := h.themes.FindByID(req.ThemeID)
	if err != nil {
		respondError(w, err)
		return
	}
	if theme == nil {
		respondError(w, models.ErrNotFound)
		return
	}

	t, err := h.templates.FindOrCreate(theme.ID, req.PageType, pageSlug, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// GetTemplate handles GET /admin/templates/{id}.
func (h *Admin) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := h.templates.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if t == nil {
		respondError(w, models.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// SaveDraft handles PUT /admin/templates/{id}/draft.
func (h *Admin) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Content json.RawMessage `json:"content"`
		SEO     *models.SEO     `json:"seo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}
	if err := validateDraftInput(req.Content, req.SEO); err != nil {
		respondError(w, err)
		return
	}

	t, err := h.workflow.SaveDraft(id, req.Content, req.SEO, actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// Publish handles POST /admin/templates/{id}/publish.
func (h *Admin) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := h.workflow.Publish(id, actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// Rollback handles POST /admin/templates/{id}/rollback.
func (h *Admin) Rollback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		VersionIndex int `json:"versionIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	t, err := h.workflow.Rollback(id, req.VersionIndex, actorID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// versionEntry is one history row in a ListVersions response. The index
// is positional: passing it to rollback restores this entry.
type versionEntry struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

// ListVersions handles GET /admin/templates/{id}/versions. Returns
// metadata only, oldest first; the rollback endpoint retrieves content.
func (h *Admin) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	t, err := h.templates.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if t == nil {
		respondError(w, models.ErrNotFound)
		return
	}

	versions, err := h.versions.ListByTemplateID(t.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	entries := make([]versionEntry, 0, len(versions))
	for i, v := range versions {
		entries = append(entries, versionEntry{
			Index:     i,
			Label:     v.Label,
			CreatedBy: v.CreatedBy.String(),
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, entries)
}

// --- Users ---

// ListUsers handles GET /admin/users. Admin role required.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /admin/users. Admin role required.
func (h *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.Validation("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, models.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		respondError(w, models.Validation("password must be at least 8 characters"))
		return
	}

	role := models.Role(req.Role)
	if role != models.RoleAdmin && role != models.RoleEditor {
		respondError(w, models.Validation("role must be admin or editor"))
		return
	}

	existing, err := h.users.FindByEmail(req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	if existing != nil {
		respondError(w, models.ErrConflict)
		return
	}

	u, err := h.users.Create(req.Email, req.Password, req.DisplayName, role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

// ResetUser2FA handles POST /admin/users/{id}/reset-2fa. Admin role
// required; the target user must re-enroll on next login.
func (h *Admin) ResetUser2FA(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	u, err := h.users.FindByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	if u == nil {
		respondError(w, models.ErrNotFound)
		return
	}

	if err := h.users.ResetTOTP(id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}
