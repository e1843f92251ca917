package dto

import "github.com/routedash/routedash/internal/entity"

// MenuItemResponse is one dish on the public menu.
type MenuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Available   bool   `json:"available"`
}

// MenuSectionResponse groups menu items under their section heading.
type MenuSectionResponse struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Items []MenuItemResponse `json:"items"`
}

// NewMenuResponse maps menu sections with their items onto the transport view.
func NewMenuResponse(sections []*entity.MenuSection) []MenuSectionResponse {
	out := make([]MenuSectionResponse, 0, len(sections))
	for _, section := range sections {
		items := make([]MenuItemResponse, 0, len(section.Items))
		for _, item := range section.Items {
			items = append(items, MenuItemResponse{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				PriceCents:  item.PriceCents,
				Available:   item.Available,
			})
		}
		out = append(out, MenuSectionResponse{
			ID:    section.ID,
			Name:  section.Name,
			Items: items,
		})
	}
	return out
}
