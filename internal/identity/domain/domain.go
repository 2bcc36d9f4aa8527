// Package domain holds the identity bounded context's shared domain types.
// The root identity package aliases them so external importers are
// unaffected; keeping the declarations here lets identity/service use them
// without importing the root package (which wires handler/service/repository
// together and would otherwise form an import cycle).
package domain

// Role is a user's role within an organization.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleSDR   Role = "sdr"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSDR
}

// AIModelPlatform selects which provider an organization's AI key targets.
type AIModelPlatform string

const (
	AIPlatformOpenAI AIModelPlatform = "OPENAI"
	AIPlatformOllama AIModelPlatform = "OLLAMA"
	AIPlatformGemini AIModelPlatform = "GEMINI"
)

// Valid reports whether the platform is a known value.
func (p AIModelPlatform) Valid() bool {
	return p == AIPlatformOpenAI || p == AIPlatformOllama || p == AIPlatformGemini
}
