// Package identity provides the identity and tenancy bounded context:
// organizations, users, authentication, and per-organization configuration.
//
// The domain types live in identity/domain so that identity/service can use
// them without importing this package, which wires the module together and
// would otherwise create an import cycle. The aliases below keep this
// package's API unchanged for external importers.
package identity

import "salesorch_backend/internal/identity/domain"

// Role is a user's role within an organization.
type Role = domain.Role

const (
	RoleAdmin = domain.RoleAdmin
	RoleSDR   = domain.RoleSDR
)

// AIModelPlatform selects which provider an organization's AI key targets.
type AIModelPlatform = domain.AIModelPlatform

const (
	AIPlatformOpenAI = domain.AIPlatformOpenAI
	AIPlatformOllama = domain.AIPlatformOllama
	AIPlatformGemini = domain.AIPlatformGemini
)
