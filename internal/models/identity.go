// Package models defines the data shared by the client and server halves of
// machinewatch: the authenticated identity and the credential record it is
// derived from.
package models

// Role is the access level of an authenticated user.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleTechnician || r == RoleAdmin
}

// Identity is who the current session belongs to, as shown to the operator.
// It is re-derived on every successful login and not modified afterwards.
type Identity struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Role             Role   `json:"role"`
	Name             string `json:"name"`
	AssignedLocation string `json:"assignedLocation,omitempty"`
	AssignedOffice   string `json:"assignedOffice,omitempty"`
}

// CredentialRecord is a user as known to a credential source. Records read
// from the relational store carry a bcrypt PasswordHash; records from the
// built-in fallback list carry RawPassword instead.
type CredentialRecord struct {
	ID               string
	Username         string
	Role             Role
	Name             string
	PasswordHash     string
	RawPassword      string
	AssignedLocation string
	AssignedOffice   string
}

// Identity projects the display fields of the record.
func (r *CredentialRecord) Identity() *Identity {
	return &Identity{
		ID:               r.ID,
		Username:         r.Username,
		Role:             r.Role,
		Name:             r.Name,
		AssignedLocation: r.AssignedLocation,
		AssignedOffice:   r.AssignedOffice,
	}
}
