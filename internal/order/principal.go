package order

import "github.com/shopsmart/backend/internal/models"

// Principal is the acting identity. It is always passed in explicitly;
// transition logic never reads it from request context.
type Principal struct {
	ID   uint
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) IsShop() bool {
	return p.Role == models.RoleShop
}
