package catalog

import (
	"fmt"
	"strings"
)

// Category is one of the five catalog sections an item belongs to.
type Category string

const (
	CategoryFile  Category = "file"
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryApp   Category = "app"
)

// Categories lists every category in menu order.
var Categories = []Category{CategoryFile, CategoryImage, CategoryVideo, CategoryAudio, CategoryApp}

var categoryLabels = map[Category]string{
	CategoryFile:  "📁 Files",
	CategoryImage: "🖼️ Images",
	CategoryVideo: "🎥 Videos",
	CategoryAudio: "🎵 Audio",
	CategoryApp:   "💻 Apps / Programs",
}

// ParseCategory validates a raw category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the menu caption for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) String() string { return string(c) }

// Accepts reports whether an upload detected as detected may be stored under target.
// Generic files may be filed as apps, everything else must match exactly.
func Accepts(target, detected Category) bool {
	if target == detected {
		return true
	}
	return (target == CategoryFile || target == CategoryApp) && detected == CategoryFile
}
