// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package wedding

import "github.com/quixsi/wedding/internal/model"

const placeholderImage = "/placeholder.svg"

func defaultWeddingDetails() model.WeddingDetails {
	return model.WeddingDetails{
		BrideName: "Daisy",
		GroomName: "Reg",
		Date:      "2025-04-26",
		Time:      "15:00",
		Location:  "Butuan City",
		Venue:     "Grand Palace Wedding Hall",
		DressCode: "Formal Attire",
	}
}

func defaultStoryEvents() []model.StoryEvent {
	return []model.StoryEvent{
		{
			ID:          "1",
			Date:        "2020-06-15",
			Title:       "First Meeting",
			Description: "We met through mutual friends at a local coffee shop.",
			Image:       placeholderImage,
		},
		{
			ID:          "2",
			Date:        "2022-02-14",
			Title:       "The Proposal",
			Description: "Under the stars at our favorite spot by the lake.",
			Image:       placeholderImage,
		},
	}
}

func defaultGiftRegistry() []model.GiftRegistryItem {
	return []model.GiftRegistryItem{
		{
			ID:          "1",
			Title:       "Home Essentials",
			Description: "Help us build our new home together.",
			Link:        "https://www.amazon.com/wedding/registry",
			Image:       placeholderImage,
		},
		{
			ID:          "2",
			Title:       "Cash Gift",
			Description: "Contribute to our honeymoon fund.",
			Image:       placeholderImage,
		},
	}
}
