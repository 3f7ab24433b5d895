// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

// GuestResponse is a submitted RSVP. NumberOfGuests is bounded by the form
// binding, the store takes whatever it is handed.
type GuestResponse struct {
	ID                  string `json:"id" form:"-"`
	Name                string `json:"name" form:"name" binding:"required"`
	Email               string `json:"email" form:"email" binding:"required,email"`
	Attending           bool   `json:"attending" form:"attending"`
	NumberOfGuests      int    `json:"numberOfGuests" form:"number_of_guests" binding:"min=0,max=10"`
	DietaryRestrictions string `json:"dietaryRestrictions" form:"dietary_restrictions"`
	Message             string `json:"message" form:"message"`
}

func (r GuestResponse) GetID() string { return r.ID }

func (r GuestResponse) WithID(id string) GuestResponse {
	r.ID = id
	return r
}
