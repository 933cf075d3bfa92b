package mapdata

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var coordPattern = regexp.MustCompile(`^c:([a-z0-9-_]+):([0-9]+):([0-9]+)$`)

// Index is the in-memory view of the loaded map package. Reads take the
// read lock; LoadDir builds a full replacement and swaps it in, so a failed
// reload never leaves a half-applied package behind.
type Index struct {
	mu          sync.RWMutex
	pkg         Package
	levels      map[string]*Level
	levelOrder  []string
	areas       map[string]*AreaLocation
	groups      map[string]*Group
	connections []Connection
}

func NewIndex() *Index {
	return &Index{
		levels: map[string]*Level{},
		areas:  map[string]*AreaLocation{},
		groups: map[string]*Group{},
	}
}

func (idx *Index) Package() Package {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.pkg
}

// Levels returns the names of the non-intermediate levels, lowest first.
func (idx *Index) Levels() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var names []string
	for _, name := range idx.levelOrder {
		if !idx.levels[name].Intermediate {
			names = append(names, name)
		}
	}
	return names
}

// Get resolves a location id: c:<level>:<x>:<y> coordinates, g:<name>
// groups, or an area location name. Returns nil when nothing matches.
func (idx *Index) Get(id string) Location {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if match := coordPattern.FindStringSubmatch(id); match != nil {
		level, ok := idx.levels[match[1]]
		if !ok {
			return nil
		}
		x, _ := strconv.Atoi(match[2])
		y, _ := strconv.Atoi(match[3])
		return &PointLocation{
			Level: level,
			X:     float64(x) / 100,
			Y:     float64(y) / 100,
			idx:   idx,
		}
	}

	if name, ok := strings.CutPrefix(id, "g:"); ok {
		if group, ok := idx.groups[name]; ok {
			return groupRef{group}
		}
		return nil
	}

	if area, ok := idx.areas[id]; ok {
		return areaRef{area, idx}
	}
	return nil
}

// Search finds locations for a free-text query: an exact id hit first, then
// word-matched area locations by significance, then up to ten groups.
func (idx *Index) Search(query string) []Location {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var results []Location

	exact := idx.Get(query)
	if exact != nil {
		results = append(results, exact)
	}

	words := strings.Fields(query)
	if len(words) > 10 {
		words = words[:10]
	}

	idx.mu.RLock()

	var areas []*AreaLocation
	for _, area := range idx.areas {
		if !area.CanSearch {
			continue
		}
		if exact != nil && exact.LocationId() == area.Name {
			continue
		}
		if matchWords(words, area.Name, area.Titles) {
			areas = append(areas, area)
		}
	}
	sort.Slice(areas, func(i, j int) bool {
		ri, si := areas[i].SortKey()
		rj, sj := areas[j].SortKey()
		if ri != rj {
			return ri > rj
		}
		if si != sj {
			return si > sj
		}
		return areas[i].Name < areas[j].Name
	})

	var groups []*Group
	for _, group := range idx.groups {
		if !group.CanSearch {
			continue
		}
		if exact != nil && exact.LocationId() == "g:"+group.Name {
			continue
		}
		if matchWords(words, group.Name, group.Titles) {
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	if len(groups) > 10 {
		groups = groups[:10]
	}

	idx.mu.RUnlock()

	for _, area := range areas {
		results = append(results, areaRef{area, idx})
	}
	for _, group := range groups {
		results = append(results, groupRef{group})
	}
	return results
}

// RoutingData snapshots what the router needs to build its graph.
func (idx *Index) RoutingData() (map[string]*AreaLocation, []Connection) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	areas := make(map[string]*AreaLocation, len(idx.areas))
	for name, area := range idx.areas {
		areas[name] = area
	}
	connections := make([]Connection, len(idx.connections))
	copy(connections, idx.connections)
	return areas, connections
}
