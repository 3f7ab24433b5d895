// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type MediaKind int

const (
	MediaKindImage MediaKind = iota + 1
	MediaKindVideo
)

var mediaKindNames = map[MediaKind]string{
	MediaKindImage: "image",
	MediaKindVideo: "video",
}

func ParseMediaKind(s string) (MediaKind, error) {
	for k, name := range mediaKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown media kind %q", s)
}

func (k MediaKind) String() string {
	if name, ok := mediaKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MediaKind(%d)", int(k))
}

func (k MediaKind) MarshalJSON() ([]byte, error) {
	name, ok := mediaKindNames[k]
	if !ok {
		return nil, fmt.Errorf("marshal media kind: invalid value %d", int(k))
	}
	return json.Marshal(name)
}

func (k *MediaKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	kind, err := ParseMediaKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// GalleryItem is a guest upload. URL is an opaque reference, the file itself
// lives elsewhere.
type GalleryItem struct {
	ID         string    `json:"id"`
	Type       MediaKind `json:"type"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	UploadedBy string    `json:"uploadedBy,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	Likes      int       `json:"likes"`
}

func (g GalleryItem) GetID() string { return g.ID }

func (g GalleryItem) WithID(id string) GalleryItem {
	g.ID = id
	return g
}

// LikesField selects the like counter for store.Collection.Increment.
func LikesField(g *GalleryItem) *int { return &g.Likes }
