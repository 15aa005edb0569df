package domain

import "context"

// Keys used in the persistent key-value store
const (
	KeyUserName       = "userName"
	KeyUserInterests  = "userInterests"
	KeyUserRole       = "userRole"
	KeyAPIKey         = "apiKey"
	KeyUsingRemoteAPI = "isUsingRealAPI"
	KeyChatHistory    = "chatHistory"
	KeyChatMessages   = "chatMessages"
)

// KVStore is a string-keyed store for JSON blobs.
// Get reports found=false for absent keys; any backend failure is returned as an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report readiness
type Pinger interface {
	Ping(ctx context.Context) error
}
