package auth

import "mcq-service/internal/domain"

const demoPassword = "password"

// SeedDemoAccounts registers the two built-in demo logins, one per role.
func SeedDemoAccounts(d *Directory) error {
	demo := []domain.Account{
		{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: "user-1", Name: "Demo User", Email: "user@example.com", Role: domain.RoleUser},
	}
	for _, account := range demo {
		if _, err := d.AddWithPassword(account, demoPassword); err != nil {
			return err
		}
	}
	return nil
}
