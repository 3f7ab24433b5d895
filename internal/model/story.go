// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

// StoryEvent is one entry of the couple's timeline. Date is an ISO-8601
// calendar date (YYYY-MM-DD), which keeps lexical and chronological order equal.
type StoryEvent struct {
	ID          string `json:"id" form:"-"`
	Date        string `json:"date" form:"date" binding:"required"`
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description"`
	Image       string `json:"image,omitempty" form:"image"`
}

func (e StoryEvent) GetID() string { return e.ID }

func (e StoryEvent) WithID(id string) StoryEvent {
	e.ID = id
	return e
}
