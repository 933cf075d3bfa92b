// Package mapdata loads a map data package (levels, locations, groups and
// their connections) into an in-memory index that the search, routing and
// site handlers read from. The package directory is the same YAML layout the
// editor proposes changes against.
package mapdata

import (
	"fmt"
	"strings"
)

type Package struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Level struct {
	Name         string `yaml:"name"`
	Intermediate bool   `yaml:"intermediate"`
}

// Group is a named set of locations, addressable as g:<name>.
type Group struct {
	Name      string            `yaml:"name"`
	Titles    map[string]string `yaml:"titles"`
	CanSearch bool              `yaml:"can_search"`
}

// AreaLocation is a named rectangle on a level: a building level, an area, a
// room or a point of interest. Type decides how prominently it sorts in
// search results.
type AreaLocation struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	Level       string            `yaml:"level"`
	Titles      map[string]string `yaml:"titles"`
	Groups      []string          `yaml:"groups"`
	CanSearch   bool              `yaml:"can_search"`
	CanDescribe bool              `yaml:"can_describe"`

	// Bounds is x1, y1, x2, y2 in map units.
	Bounds [4]float64 `yaml:"bounds"`
}

// Connection links two area locations for routing. CType is empty for plain
// walking and otherwise one of stairs_up, stairs_down, escalator_up,
// escalator_down, elevator_up, elevator_down.
type Connection struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	CType    string  `yaml:"ctype"`
	Distance float64 `yaml:"distance"`
}

var typeRanks = map[string]int{
	"level": 4,
	"area":  3,
	"room":  2,
	"poi":   1,
}

var typeTitles = map[string]string{
	"level": "Level",
	"area":  "Area",
	"room":  "Room",
	"poi":   "Point of Interest",
}

// DisplayTitle is the english title when present, any title otherwise, and
// the raw name as a last resort.
func (a *AreaLocation) DisplayTitle() string {
	return title(a.Titles, a.Name)
}

func (a *AreaLocation) Contains(x, y float64) bool {
	return x >= a.Bounds[0] && x <= a.Bounds[2] && y >= a.Bounds[1] && y <= a.Bounds[3]
}

func (a *AreaLocation) Center() (float64, float64) {
	return (a.Bounds[0] + a.Bounds[2]) / 2, (a.Bounds[1] + a.Bounds[3]) / 2
}

func (a *AreaLocation) area() float64 {
	return (a.Bounds[2] - a.Bounds[0]) * (a.Bounds[3] - a.Bounds[1])
}

// SortKey orders search results: more significant location types first,
// larger areas first within a type.
func (a *AreaLocation) SortKey() (int, float64) {
	return typeRanks[a.Type], a.area()
}

func title(titles map[string]string, fallback string) string {
	if t, ok := titles["en"]; ok && t != "" {
		return t
	}
	for _, t := range titles {
		if t != "" {
			return t
		}
	}
	return fallback
}

func matchWords(words []string, name string, titles map[string]string) bool {
	for _, word := range words {
		word = strings.ToLower(word)
		if strings.Contains(strings.ToLower(name), word) {
			continue
		}
		found := false
		for _, t := range titles {
			if strings.Contains(strings.ToLower(t), word) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func coordId(level string, x, y float64) string {
	return fmt.Sprintf("c:%s:%d:%d", level, int(x*100), int(y*100))
}
