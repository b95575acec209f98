package services

import (
	"context"

	"github.com/cashbookhq/cashbook-bot/internal/core/domain"
)

// IdentityReaderSvc defines the read half of the registry, used by every
// coordinator for authorization.
type IdentityReaderSvc interface {
	// Authorize checks the caller's allowed flag and role against the
	// capability; apperrors.ErrUnauthorized on denial,
	// apperrors.ErrUnknownIdentity for ids not in the registry.
	Authorize(ctx context.Context, userID int64, capability domain.Capability) error

	// Identity returns the registered identity for the id.
	Identity(ctx context.Context, userID int64) (*domain.Identity, error)

	// ResolveRoleByDisplayName looks a role up by display name; used when
	// mirroring payment rows that carry only names. False when unknown.
	ResolveRoleByDisplayName(ctx context.Context, displayName string) (domain.Role, bool)

	// IdentityByDisplayName finds a registered identity by display name; used
	// for payment cross-notification. False when unknown.
	IdentityByDisplayName(ctx context.Context, displayName string) (*domain.Identity, bool)
}

// IdentityAdminSvc defines the registry's mutating operations.
type IdentityAdminSvc interface {
	// Register records a newly seen chat user with the worker role, not
	// allowed. No-op when already registered.
	Register(ctx context.Context, userID int64, displayName string) error

	// SetRole changes a user's role; restricted to the super admin. The super
	// admin role itself is never assignable, so there is always at most one.
	SetRole(ctx context.Context, callerID, userID int64, role domain.Role) error

	// Allow adds the user to the allowed set; restricted to the super admin.
	Allow(ctx context.Context, callerID, userID int64) error

	// Disallow removes the user from the allowed set. The super admin cannot
	// be disallowed.
	Disallow(ctx context.Context, callerID, userID int64) error

	// SetActiveWorksheet stores the user's active spreadsheet selection.
	SetActiveWorksheet(ctx context.Context, userID int64, spreadsheetID, sheetName string) error

	// AddReport and RemoveReport maintain the user's record back-reference
	// list.
	AddReport(ctx context.Context, userID int64, recordID string) error
	RemoveReport(ctx context.Context, userID int64, recordID string) error

	// MigrateRoles is the one-shot startup pass assigning roles to identities
	// that predate the role field.
	MigrateRoles(ctx context.Context) error
}

// IdentitySvcFacade combines the registry interfaces.
type IdentitySvcFacade interface {
	IdentityReaderSvc
	IdentityAdminSvc
}
