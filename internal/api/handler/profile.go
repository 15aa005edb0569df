package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/api/response"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/security"
	"github.com/Rrens/chat-workspace/internal/service"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profiles   *service.ProfileManager
	jwtManager *security.JWTManager
	now        func() time.Time
}

// NewProfileHandler creates a new profile handler. jwtManager may be nil when auth is disabled.
func NewProfileHandler(profiles *service.ProfileManager, jwtManager *security.JWTManager) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, jwtManager: jwtManager, now: time.Now}
}

type profileView struct {
	Name                string `json:"name"`
	Interests           string `json:"interests"`
	Role                string `json:"role"`
	APIKey              string `json:"api_key,omitempty"`
	UsingRemoteProvider bool   `json:"using_remote_provider"`
}

func newProfileView(p domain.Profile) profileView {
	return profileView{
		Name:                p.Name,
		Interests:           p.Interests,
		Role:                p.Role,
		APIKey:              maskCredential(p.Credential),
		UsingRemoteProvider: p.UsingRemoteProvider,
	}
}

func maskCredential(c string) string {
	if c == "" {
		return ""
	}
	if len(c) <= 4 {
		return strings.Repeat("*", len(c))
	}
	return strings.Repeat("*", 8) + c[len(c)-4:]
}

// Get returns the current profile with the credential masked
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.profiles.Ready() {
		response.NotFound(w, domain.ErrProfileNotReady.Error())
		return
	}
	response.OK(w, newProfileView(h.profiles.Profile()))
}

// Setup creates the profile and issues an access token
func (h *ProfileHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var input domain.ProfileInput
	if !decode(w, r, &input) {
		return
	}

	res, err := h.profiles.Setup(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body := map[string]any{
		"profile": newProfileView(res.Profile),
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}

	if h.jwtManager != nil {
		token, err := h.jwtManager.GenerateAccessToken(res.Profile.Name, res.Profile.Role)
		if err != nil {
			log.Error().Err(err).Msg("failed to issue access token")
			response.InternalError(w, "failed to issue access token")
			return
		}
		body["access_token"] = token
		body["token_type"] = "Bearer"
		body["expires_in"] = int(h.jwtManager.AccessTokenTTL().Seconds())
	}

	response.Created(w, body)
}

// Update changes the profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.ProfileInput
	if !decode(w, r, &input) {
		return
	}

	res, err := h.profiles.Update(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body := map[string]any{"profile": newProfileView(res.Profile)}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	response.OK(w, body)
}

// Greeting returns the time-of-day greeting for the profile
func (h *ProfileHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"greeting": service.Greeting(h.now(), h.profiles.Profile().Name),
	})
}
