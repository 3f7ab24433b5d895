// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

// WeddingDetails is the singleton describing the event itself. Date and Time
// are stored as entered, they are not checked against each other.
type WeddingDetails struct {
	BrideName string `json:"brideName" form:"bride_name"`
	GroomName string `json:"groomName" form:"groom_name"`
	Date      string `json:"date" form:"date"`
	Time      string `json:"time" form:"time"`
	Location  string `json:"location" form:"location"`
	Venue     string `json:"venue" form:"venue"`
	DressCode string `json:"dressCode" form:"dress_code"`
}

// WeddingDetailsPatch carries the fields to change. Nil fields are kept.
type WeddingDetailsPatch struct {
	BrideName *string `json:"brideName,omitempty" form:"bride_name"`
	GroomName *string `json:"groomName,omitempty" form:"groom_name"`
	Date      *string `json:"date,omitempty" form:"date"`
	Time      *string `json:"time,omitempty" form:"time"`
	Location  *string `json:"location,omitempty" form:"location"`
	Venue     *string `json:"venue,omitempty" form:"venue"`
	DressCode *string `json:"dressCode,omitempty" form:"dress_code"`
}

func (p WeddingDetailsPatch) Apply(d WeddingDetails) WeddingDetails {
	setString(&d.BrideName, p.BrideName)
	setString(&d.GroomName, p.GroomName)
	setString(&d.Date, p.Date)
	setString(&d.Time, p.Time)
	setString(&d.Location, p.Location)
	setString(&d.Venue, p.Venue)
	setString(&d.DressCode, p.DressCode)
	return d
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
