package domain

// Profile holds the user's identity and completion preferences
type Profile struct {
	Name                string `json:"name"`
	Interests           string `json:"interests"`
	Role                string `json:"role"`
	Credential          string `json:"-"`
	UsingRemoteProvider bool   `json:"using_remote_provider"`
}

// HasCredential reports whether a credential is stored
func (p Profile) HasCredential() bool {
	return p.Credential != ""
}

// ProfileInput represents profile setup/update data
type ProfileInput struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Interests  string `json:"interests" validate:"max=1000"`
	Credential string `json:"api_key" validate:"max=512"`
}

// ProfileResult is returned by setup and update
type ProfileResult struct {
	Profile Profile `json:"profile"`
	// Warning is set when credential validation failed and demo mode was kept
	Warning string `json:"warning,omitempty"`
}

// Default role used when no interests are given
const DefaultRole = "AI Assistant User"
