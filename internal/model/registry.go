// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

type GiftRegistryItem struct {
	ID          string `json:"id" form:"-"`
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description"`
	Link        string `json:"link,omitempty" form:"link" binding:"omitempty,url"`
	Image       string `json:"image,omitempty" form:"image"`
}

func (g GiftRegistryItem) GetID() string { return g.ID }

func (g GiftRegistryItem) WithID(id string) GiftRegistryItem {
	g.ID = id
	return g
}

// GiftRegistryPatch carries the fields to change. Nil fields are kept.
type GiftRegistryPatch struct {
	Title       *string `json:"title,omitempty" form:"title"`
	Description *string `json:"description,omitempty" form:"description"`
	Link        *string `json:"link,omitempty" form:"link"`
	Image       *string `json:"image,omitempty" form:"image"`
}

func (p GiftRegistryPatch) Apply(g GiftRegistryItem) GiftRegistryItem {
	setString(&g.Title, p.Title)
	setString(&g.Description, p.Description)
	setString(&g.Link, p.Link)
	setString(&g.Image, p.Image)
	return g
}
