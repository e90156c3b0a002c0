// Package platform holds the publishing-target reference table: allowed aspect
// ratios, pixel dimensions, duration limits and overlay safe zones per platform.
// The table is built once at init and never mutated afterwards.
package platform

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrUnmappedRatio   = errors.New("ratio has no dimensions")
)

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SafeZones are percentage insets per edge that critical overlay content
// should stay out of. {Bottom: 20, Right: 15} means avoid the bottom 20% and
// the right 15% of the frame.
type SafeZones struct {
	Top    int `json:"top,omitempty"`
	Right  int `json:"right,omitempty"`
	Bottom int `json:"bottom,omitempty"`
	Left   int `json:"left,omitempty"`
}

// Profile describes one publishing target.
type Profile struct {
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	Ratios       []string   `json:"ratios"`
	DefaultRatio string     `json:"default_ratio"`
	MaxDuration  int        `json:"max_duration"`
	Dimensions   Dimensions `json:"dimensions"`
	SafeZones    SafeZones  `json:"safe_zones"`
}

// Entry is the short form returned by List.
type Entry struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

var profiles = []Profile{
	{
		Key:          "tiktok",
		Name:         "TikTok",
		Ratios:       []string{"9:16"},
		DefaultRatio: "9:16",
		MaxDuration:  600,
		Dimensions:   Dimensions{Width: 1080, Height: 1920},
		SafeZones:    SafeZones{Bottom: 20, Right: 15},
	},
	{
		Key:          "instagram_reels",
		Name:         "Instagram Reels",
		Ratios:       []string{"9:16"},
		DefaultRatio: "9:16",
		MaxDuration:  90,
		Dimensions:   Dimensions{Width: 1080, Height: 1920},
		SafeZones:    SafeZones{Bottom: 15},
	},
	{
		Key:          "instagram_feed",
		Name:         "Instagram Feed",
		Ratios:       []string{"1:1", "4:5", "16:9"},
		DefaultRatio: "1:1",
		MaxDuration:  60,
		Dimensions:   Dimensions{Width: 1080, Height: 1080},
	},
	{
		Key:          "instagram_story",
		Name:         "Instagram Story",
		Ratios:       []string{"9:16"},
		DefaultRatio: "9:16",
		MaxDuration:  60,
		Dimensions:   Dimensions{Width: 1080, Height: 1920},
		SafeZones:    SafeZones{Top: 10, Bottom: 15},
	},
	{
		Key:          "facebook_feed",
		Name:         "Facebook Feed",
		Ratios:       []string{"1:1", "4:5", "16:9"},
		DefaultRatio: "1:1",
		MaxDuration:  240,
		Dimensions:   Dimensions{Width: 1080, Height: 1080},
	},
	{
		Key:          "facebook_reels",
		Name:         "Facebook Reels",
		Ratios:       []string{"9:16"},
		DefaultRatio: "9:16",
		MaxDuration:  90,
		Dimensions:   Dimensions{Width: 1080, Height: 1920},
		SafeZones:    SafeZones{Bottom: 20},
	},
	{
		Key:          "youtube_shorts",
		Name:         "YouTube Shorts",
		Ratios:       []string{"9:16"},
		DefaultRatio: "9:16",
		MaxDuration:  60,
		Dimensions:   Dimensions{Width: 1080, Height: 1920},
		SafeZones:    SafeZones{Bottom: 15},
	},
	{
		Key:          "linkedin_feed",
		Name:         "LinkedIn Feed",
		Ratios:       []string{"1:1", "16:9", "9:16"},
		DefaultRatio: "1:1",
		MaxDuration:  600,
		Dimensions:   Dimensions{Width: 1080, Height: 1080},
	},
	{
		Key:          "pinterest",
		Name:         "Pinterest",
		Ratios:       []string{"2:3", "1:1"},
		DefaultRatio: "2:3",
		MaxDuration:  60,
		Dimensions:   Dimensions{Width: 1000, Height: 1500},
	},
}

// ratioDimensions is shared across platforms and intentionally independent of
// the per-profile Dimensions field. A ratio a platform allows may be missing
// here; see Profile.DimensionsFor.
var ratioDimensions = map[string]Dimensions{
	"1:1":  {Width: 1080, Height: 1080},
	"4:5":  {Width: 1080, Height: 1350},
	"9:16": {Width: 1080, Height: 1920},
	"16:9": {Width: 1920, Height: 1080},
	"2:3":  {Width: 1000, Height: 1500},
	"3:4":  {Width: 1080, Height: 1440},
}

var byKey = func() map[string]int {
	m := make(map[string]int, len(profiles))
	for i, p := range profiles {
		m[p.Key] = i
	}
	return m
}()

// Lookup returns a copy of the profile registered under key.
func Lookup(key string) (Profile, error) {
	i, ok := byKey[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, key)
	}
	return profiles[i].clone(), nil
}

// List returns every platform in registration order.
func List() []Entry {
	entries := make([]Entry, len(profiles))
	for i, p := range profiles {
		entries[i] = Entry{Key: p.Key, DisplayName: p.Name}
	}
	return entries
}

// Profiles returns copies of all profiles in registration order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p.clone()
	}
	return out
}

// ResolveDimensions looks a ratio up in the shared ratio table.
func ResolveDimensions(ratio string) (Dimensions, error) {
	d, ok := ratioDimensions[ratio]
	if !ok {
		return Dimensions{}, fmt.Errorf("%w: %q", ErrUnmappedRatio, ratio)
	}
	return d, nil
}

// AllowsRatio reports whether ratio is one of the profile's ratios.
func (p Profile) AllowsRatio(ratio string) bool {
	for _, r := range p.Ratios {
		if r == ratio {
			return true
		}
	}
	return false
}

// DimensionsFor resolves a ratio through the shared table and falls back to the
// profile's own dimensions when the ratio is unmapped.
func (p Profile) DimensionsFor(ratio string) Dimensions {
	if d, err := ResolveDimensions(ratio); err == nil {
		return d
	}
	return p.Dimensions
}

func (p Profile) clone() Profile {
	p.Ratios = append([]string(nil), p.Ratios...)
	return p
}
