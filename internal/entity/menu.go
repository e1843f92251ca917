package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// MenuSection groups menu items under a heading, ordered by position.
type MenuSection struct {
	bun.BaseModel `bun:"table:menu_sections,alias:ms"`

	ID           string `bun:",pk"`
	RestaurantID string `bun:"restaurant_id,notnull"`
	Name         string `bun:"name,notnull"`
	Position     int    `bun:"position,notnull,default:0"`

	Items []*MenuItem `bun:"rel:has-many,join:id=section_id"`
}

// MenuItem is a purchasable dish with its current listed price.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID           string    `bun:",pk"`
	RestaurantID string    `bun:"restaurant_id,notnull"`
	SectionID    string    `bun:"section_id,notnull"`
	Name         string    `bun:"name,notnull"`
	Description  string    `bun:"description"`
	PriceCents   int64     `bun:"price_cents,notnull"`
	Available    bool      `bun:"available,notnull,default:true"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}
