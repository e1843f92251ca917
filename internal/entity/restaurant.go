package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Restaurant is a merchant storefront that receives orders.
type Restaurant struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID        string    `bun:",pk"`
	OwnerID   string    `bun:"owner_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Address   string    `bun:"address"`
	Active    bool      `bun:"active,notnull,default:true"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
