package mapdata

import (
	"fmt"
	"math"
	"sort"
)

// Location is anything addressable by a location id: an area location, a
// location group (g:<name>) or raw coordinates (c:<level>:<x>:<y>).
type Location interface {
	LocationId() string
	Title() string
	Subtitle() string
}

// areaRef wraps an AreaLocation with the index it came from so the subtitle
// can name the enclosing area.
type areaRef struct {
	*AreaLocation
	idx *Index
}

func (a areaRef) LocationId() string {
	return a.Name
}

func (a areaRef) Title() string {
	return title(a.Titles, a.Name)
}

func (a areaRef) Subtitle() string {
	typeTitle := typeTitles[a.Type]
	if typeTitle == "" {
		typeTitle = "Location"
	}

	enclosing := a.idx.enclosingArea(a.AreaLocation)
	if enclosing == nil {
		return typeTitle
	}
	return fmt.Sprintf("%s in %s", typeTitle, title(enclosing.Titles, enclosing.Name))
}

type groupRef struct {
	*Group
}

func (g groupRef) LocationId() string {
	return "g:" + g.Name
}

func (g groupRef) Title() string {
	return title(g.Titles, g.Name)
}

func (g groupRef) Subtitle() string {
	return "Location Group"
}

// PointLocation is a map-click selection: raw coordinates on a level,
// described by whatever area they fall into or lie near.
type PointLocation struct {
	Level *Level
	X     float64
	Y     float64

	idx *Index
}

func (p *PointLocation) LocationId() string {
	return coordId(p.Level.Name, p.X, p.Y)
}

func (p *PointLocation) Title() string {
	area, contained := p.idx.describePoint(p)
	if area == nil {
		return "Coordinates"
	}
	if contained {
		return fmt.Sprintf("Coordinates in %s", title(area.Titles, area.Name))
	}
	return fmt.Sprintf("Coordinates near %s", title(area.Titles, area.Name))
}

func (p *PointLocation) Subtitle() string {
	subtitle := fmt.Sprintf("%s:%d:%d", p.Level.Name, int(p.X*100), int(p.Y*100))
	area, _ := p.idx.describePoint(p)
	if area != nil {
		typeTitle := typeTitles[area.Type]
		if typeTitle != "" {
			subtitle += " - " + typeTitle
		}
	}
	return subtitle
}

// enclosingArea finds the most specific other area containing a's center.
func (idx *Index) enclosingArea(a *AreaLocation) *AreaLocation {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	cx, cy := a.Center()

	var candidates []*AreaLocation
	for _, other := range idx.areas {
		if other.Name == a.Name || other.Level != a.Level || !other.CanDescribe {
			continue
		}
		if typeRanks[other.Type] <= typeRanks[a.Type] {
			continue
		}
		if other.Contains(cx, cy) {
			candidates = append(candidates, other)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// smallest containing area is the most specific one
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].area() < candidates[j].area()
	})
	return candidates[0]
}

// describePoint returns the best describable area for the point and whether
// the point actually lies inside it.
func (idx *Index) describePoint(p *PointLocation) (*AreaLocation, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var containing *AreaLocation
	var nearest *AreaLocation
	nearestDist := math.Inf(1)

	for _, area := range idx.areas {
		if area.Level != p.Level.Name || !area.CanDescribe {
			continue
		}
		if area.Contains(p.X, p.Y) {
			if containing == nil || area.area() < containing.area() {
				containing = area
			}
			continue
		}
		cx, cy := area.Center()
		dist := math.Hypot(cx-p.X, cy-p.Y)
		if dist < nearestDist {
			nearest = area
			nearestDist = dist
		}
	}

	if containing != nil {
		return containing, true
	}
	if nearest != nil && nearestDist <= nearbyRadius {
		return nearest, false
	}
	return nil, false
}

// nearbyRadius is how far (in map units) a describable area may be from a
// clicked point before the point is just "Coordinates".
const nearbyRadius = 20.0
