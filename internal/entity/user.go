package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole distinguishes customers from restaurant owners.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMerchant UserRole = "merchant"
)

// User is an account that places orders or owns restaurants.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:",pk"`
	Email     string    `bun:"email,notnull,unique"`
	Name      string    `bun:"name,notnull"`
	Role      UserRole  `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
