package credentials

import "github.com/dmitrijs2005/machinewatch/internal/models"

// FallbackUsers returns the demo accounts available when the store is
// disabled or does not know a user. Passwords are held in plain text; these
// accounts exist for demonstrations only.
func FallbackUsers() []models.CredentialRecord {
	return []models.CredentialRecord{
		{
			ID:               "t1",
			Username:         "ashutosh",
			RawPassword:      "cdc123",
			Role:             models.RoleTechnician,
			Name:             "Ashutosh",
			AssignedLocation: "Pune",
			AssignedOffice:   "CDC Office",
		},
		{
			ID:               "t2",
			Username:         "rahul",
			RawPassword:      "rahul123",
			Role:             models.RoleTechnician,
			Name:             "Rahul Verma",
			AssignedLocation: "Mumbai",
			AssignedOffice:   "Andheri Tech Center",
		},
		{
			ID:          "a1",
			Username:    "admin",
			RawPassword: "admin123",
			Role:        models.RoleAdmin,
			Name:        "Admin User",
		},
	}
}
