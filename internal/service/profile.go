package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/llm"
	"github.com/Rrens/chat-workspace/internal/security"
)

// minProbeLength is the shortest credential worth validating remotely
const minProbeLength = 11

// WarningCredentialRejected is returned when the remote provider refused the credential
const WarningCredentialRejected = "API key validation failed. Continuing in demo mode."

var validate = validator.New()

var roleRules = []struct {
	keywords []string
	role     string
}{
	{[]string{"python"}, "Python Developer"},
	{[]string{"javascript", "web"}, "Web Developer"},
	{[]string{"cybersecurity", "security"}, "Security Specialist"},
	{[]string{"data", "analysis"}, "Data Analyst"},
	{[]string{"machine learning", "ai"}, "ML Engineer"},
}

// DeriveRole maps free-text interests to a role label. The first matching rule wins.
func DeriveRole(interests string) string {
	lower := strings.ToLower(interests)
	for _, rule := range roleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.role
			}
		}
	}
	if strings.TrimSpace(interests) != "" {
		return "Developer"
	}
	return domain.DefaultRole
}

// CredentialValidator resolves the provider credentials are probed against
type CredentialValidator interface {
	Remote() (llm.Provider, error)
}

// ProfileManager owns the user profile and its remote-mode flag
type ProfileManager struct {
	// setupMu serializes Setup so only one caller can create the profile
	setupMu   sync.Mutex
	mu        sync.RWMutex
	store     domain.KVStore
	providers CredentialValidator
	encryptor *security.Encryptor
	publisher EventPublisher
	clock     Clock

	profile domain.Profile
	ready   bool
}

// NewProfileManager creates a manager. encryptor may be nil to store the credential as is.
func NewProfileManager(store domain.KVStore, providers CredentialValidator, encryptor *security.Encryptor, opts ...Option) *ProfileManager {
	o := buildOptions(opts)
	return &ProfileManager{
		store:     store,
		providers: providers,
		encryptor: encryptor,
		publisher: o.publisher,
		clock:     o.clock,
	}
}

// Setup creates the profile. Invalid input is rejected without changing anything.
// Once a profile exists, set up or restored, Setup fails with domain.ErrProfileExists.
func (m *ProfileManager) Setup(ctx context.Context, input domain.ProfileInput) (*domain.ProfileResult, error) {
	m.setupMu.Lock()
	defer m.setupMu.Unlock()

	if m.Ready() {
		return nil, domain.ErrProfileExists
	}

	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	credential, remote, warning := m.checkCredential(ctx, input.Credential)
	return m.apply(ctx, input, credential, remote, warning), nil
}

// Update changes an existing profile. The credential is only probed again when it changed.
func (m *ProfileManager) Update(ctx context.Context, input domain.ProfileInput) (*domain.ProfileResult, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current := m.Profile()
	credential, remote, warning := current.Credential, current.UsingRemoteProvider, ""
	if input.Credential != current.Credential {
		credential, remote, warning = m.checkCredential(ctx, input.Credential)
	}

	return m.apply(ctx, input, credential, remote, warning), nil
}

// Restore loads a stored profile. Remote mode is on iff a stored credential is long enough.
func (m *ProfileManager) Restore(ctx context.Context) bool {
	name, found, err := m.store.Get(ctx, domain.KeyUserName)
	if err != nil {
		log.Warn().Err(err).Msg("could not load profile")
		return false
	}
	if !found || name == "" {
		return false
	}

	interests := m.getString(ctx, domain.KeyUserInterests)
	role := m.getString(ctx, domain.KeyUserRole)
	if role == "" {
		role = domain.DefaultRole
	}

	credential, err := m.encryptor.OpenCredential(m.getString(ctx, domain.KeyAPIKey))
	if err != nil {
		log.Warn().Err(err).Msg("stored credential could not be decrypted, using demo mode")
		credential = ""
	}

	profile := domain.Profile{
		Name:                name,
		Interests:           interests,
		Role:                role,
		Credential:          credential,
		UsingRemoteProvider: len(credential) >= minProbeLength,
	}

	m.mu.Lock()
	m.profile = profile
	m.ready = true
	m.mu.Unlock()

	log.Info().Str("name", profile.Name).Bool("remote", profile.UsingRemoteProvider).Msg("existing profile restored")
	publish(ctx, m.publisher, m.clock, domain.EventProfileReady, profile)
	return true
}

// DisableRemote switches the profile to the local responder. It never switches back.
func (m *ProfileManager) DisableRemote(ctx context.Context) {
	m.mu.Lock()
	if !m.profile.UsingRemoteProvider {
		m.mu.Unlock()
		return
	}
	m.profile.UsingRemoteProvider = false
	m.mu.Unlock()

	log.Warn().Msg("remote provider failed, continuing in demo mode")
	_ = persistString(ctx, m.store, domain.KeyUsingRemoteAPI, "false")
}

// Profile returns a snapshot of the current profile
func (m *ProfileManager) Profile() domain.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Ready reports whether a profile was set up or restored
func (m *ProfileManager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *ProfileManager) checkCredential(ctx context.Context, credential string) (string, bool, string) {
	if len(credential) < minProbeLength {
		return "", false, ""
	}

	provider, err := m.providers.Remote()
	if err != nil {
		log.Error().Err(err).Msg("no remote provider available for credential validation")
		return "", false, WarningCredentialRejected
	}

	if !provider.ValidateCredential(ctx, credential) {
		return "", false, WarningCredentialRejected
	}
	return credential, true, ""
}

func (m *ProfileManager) apply(ctx context.Context, input domain.ProfileInput, credential string, remote bool, warning string) *domain.ProfileResult {
	profile := domain.Profile{
		Name:                input.Name,
		Interests:           input.Interests,
		Role:                DeriveRole(input.Interests),
		Credential:          credential,
		UsingRemoteProvider: remote,
	}

	m.mu.Lock()
	m.profile = profile
	m.ready = true
	m.mu.Unlock()

	m.persist(ctx, profile)

	log.Info().Str("name", profile.Name).Str("role", profile.Role).Bool("remote", remote).Msg("profile saved")
	publish(ctx, m.publisher, m.clock, domain.EventProfileReady, profile)

	return &domain.ProfileResult{Profile: profile, Warning: warning}
}

func (m *ProfileManager) persist(ctx context.Context, p domain.Profile) {
	_ = persistString(ctx, m.store, domain.KeyUserName, p.Name)
	_ = persistString(ctx, m.store, domain.KeyUserInterests, p.Interests)
	_ = persistString(ctx, m.store, domain.KeyUserRole, p.Role)

	if p.Credential == "" {
		_ = removeKey(ctx, m.store, domain.KeyAPIKey)
	} else if sealed, err := m.encryptor.SealCredential(p.Credential); err != nil {
		log.Error().Err(err).Msg("failed to encrypt credential, not persisting it")
	} else {
		_ = persistString(ctx, m.store, domain.KeyAPIKey, sealed)
	}

	_ = persistString(ctx, m.store, domain.KeyUsingRemoteAPI, strconv.FormatBool(p.UsingRemoteProvider))
}

func (m *ProfileManager) getString(ctx context.Context, key string) string {
	v, _, err := m.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("could not load profile field")
	}
	return v
}

func normalizeInput(in domain.ProfileInput) domain.ProfileInput {
	return domain.ProfileInput{
		Name:       strings.TrimSpace(in.Name),
		Interests:  strings.TrimSpace(in.Interests),
		Credential: strings.TrimSpace(in.Credential),
	}
}

func validateInput(in domain.ProfileInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &domain.ValidationError{Field: "profile", Message: err.Error()}
	}

	e := validationErrors[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return &domain.ValidationError{Field: field, Message: "field is required"}
	case "min":
		return &domain.ValidationError{Field: field, Message: "must be at least " + e.Param() + " characters"}
	case "max":
		return &domain.ValidationError{Field: field, Message: "must be at most " + e.Param() + " characters"}
	default:
		return &domain.ValidationError{Field: field, Message: "validation failed on " + e.Tag()}
	}
}
