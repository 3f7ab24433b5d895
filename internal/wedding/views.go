// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package wedding

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/quixsi/wedding/internal/model"
)

// Timeline returns the story events ordered by date, oldest first.
func (p *Provider) Timeline() []model.StoryEvent {
	events := p.StoryEvents()
	slices.SortStableFunc(events, func(a, b model.StoryEvent) int {
		return strings.Compare(a.Date, b.Date)
	})
	return events
}

// Gallery returns the gallery newest first. A nil kind returns every item.
func (p *Provider) Gallery(kind *model.MediaKind) []model.GalleryItem {
	items := p.GalleryItems()
	if kind != nil {
		items = slices.DeleteFunc(items, func(it model.GalleryItem) bool { return it.Type != *kind })
	}
	slices.SortStableFunc(items, func(a, b model.GalleryItem) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return items
}

type Stats struct {
	Responses       int `json:"responses"`
	Attending       int `json:"attending"`
	Declined        int `json:"declined"`
	AttendingGuests int `json:"attendingGuests"`
}

// Stats summarizes the guest responses. AttendingGuests sums the party size
// of attending responses only.
func (p *Provider) Stats() Stats {
	var s Stats
	for _, r := range p.GuestResponses() {
		s.Responses++
		if !r.Attending {
			s.Declined++
			continue
		}
		s.Attending++
		s.AttendingGuests += r.NumberOfGuests
	}
	return s
}

type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Countdown returns the time left until the ceremony, or all zeros once it
// has started.
func (p *Provider) Countdown(now time.Time) (Countdown, error) {
	d := p.WeddingDetails()
	start, err := time.ParseInLocation("2006-01-02 15:04", d.Date+" "+d.Time, p.location)
	if err != nil {
		return Countdown{}, fmt.Errorf("parse wedding date %q %q: %w", d.Date, d.Time, err)
	}
	left := start.Sub(now)
	if left <= 0 {
		return Countdown{}, nil
	}
	return Countdown{
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left % (24 * time.Hour) / time.Hour),
		Minutes: int(left % time.Hour / time.Minute),
		Seconds: int(left % time.Minute / time.Second),
	}, nil
}
