package domain

import "fmt"

// Role defines a user's category within the organization. It determines the
// capability set and, for payments, the destination worksheet.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleWorker     Role = "WORKER"
	RoleSecondary  Role = "SECONDARY"
	RoleClient     Role = "CLIENT"
)

// PaymentRoles are the roles that may receive payments, in worksheet order.
var PaymentRoles = []Role{RoleAdmin, RoleWorker, RoleSecondary, RoleClient}

// ParseRole converts a stored string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleWorker, RoleSecondary, RoleClient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanReceivePayments reports whether the role has a worksheet in the payments
// spreadsheet.
func (r Role) CanReceivePayments() bool {
	for _, pr := range PaymentRoles {
		if r == pr {
			return true
		}
	}
	return false
}

// Capability names an action checked against the role matrix.
type Capability string

const (
	CapViewOwnPayments Capability = "VIEW_OWN_PAYMENTS"
	CapViewAllPayments Capability = "VIEW_ALL_PAYMENTS"
	CapManageRecords   Capability = "MANAGE_RECORDS"
	CapManagePayments  Capability = "MANAGE_PAYMENTS"
	CapManageRoles     Capability = "MANAGE_ROLES"
)

// capabilityMatrix is the table-driven authorization source of truth. A role
// absent from a capability's row is denied.
var capabilityMatrix = map[Capability]map[Role]bool{
	CapViewOwnPayments: {RoleSuperAdmin: true, RoleAdmin: true, RoleWorker: true, RoleSecondary: true},
	CapViewAllPayments: {RoleSuperAdmin: true, RoleAdmin: true, RoleSecondary: true},
	CapManageRecords:   {RoleSuperAdmin: true, RoleAdmin: true, RoleWorker: true},
	CapManagePayments:  {RoleSuperAdmin: true, RoleAdmin: true},
	CapManageRoles:     {RoleSuperAdmin: true},
}

// HasCapability reports whether the role grants the capability. The caller is
// responsible for the allowed-flag check and any ownership narrowing (a worker
// may manage only their own records).
func (r Role) HasCapability(c Capability) bool {
	row, ok := capabilityMatrix[c]
	if !ok {
		return false
	}
	return row[r]
}
