package mapdata

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadDir reads a map package directory:
//
//	pkg.yaml          package name and dimensions
//	levels/*.yaml     one level per file
//	groups/*.yaml     one group per file
//	locations/*.yaml  one area location per file
//	connections.yaml  routing connections
//
// The whole directory is parsed and validated before anything is swapped
// into the index.
func (idx *Index) LoadDir(dir string) error {
	var pkg Package
	if err := readYamlFile(filepath.Join(dir, "pkg.yaml"), &pkg); err != nil {
		return err
	}
	if pkg.Name == "" {
		return errors.New("pkg.yaml: package name is required")
	}

	levels := map[string]*Level{}
	var levelOrder []string
	if err := eachYamlFile(filepath.Join(dir, "levels"), func(path string) error {
		var level Level
		if err := readYamlFile(path, &level); err != nil {
			return err
		}
		if level.Name == "" {
			level.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		if _, ok := levels[level.Name]; ok {
			return errors.Errorf("duplicate level %q", level.Name)
		}
		levels[level.Name] = &level
		levelOrder = append(levelOrder, level.Name)
		return nil
	}); err != nil {
		return err
	}
	sort.SliceStable(levelOrder, func(i, j int) bool {
		return levelLess(levelOrder[i], levelOrder[j])
	})

	groups := map[string]*Group{}
	if err := eachYamlFile(filepath.Join(dir, "groups"), func(path string) error {
		var group Group
		if err := readYamlFile(path, &group); err != nil {
			return err
		}
		if group.Name == "" {
			group.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		if _, ok := groups[group.Name]; ok {
			return errors.Errorf("duplicate group %q", group.Name)
		}
		groups[group.Name] = &group
		return nil
	}); err != nil {
		return err
	}

	areas := map[string]*AreaLocation{}
	if err := eachYamlFile(filepath.Join(dir, "locations"), func(path string) error {
		var area AreaLocation
		if err := readYamlFile(path, &area); err != nil {
			return err
		}
		if area.Name == "" {
			area.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		if _, ok := areas[area.Name]; ok {
			return errors.Errorf("duplicate location %q", area.Name)
		}
		if _, ok := levels[area.Level]; !ok {
			return errors.Errorf("location %q references unknown level %q", area.Name, area.Level)
		}
		for _, group := range area.Groups {
			if _, ok := groups[group]; !ok {
				return errors.Errorf("location %q references unknown group %q", area.Name, group)
			}
		}
		areas[area.Name] = &area
		return nil
	}); err != nil {
		return err
	}

	var connections []Connection
	connectionsPath := filepath.Join(dir, "connections.yaml")
	if _, err := os.Stat(connectionsPath); err == nil {
		if err := readYamlFile(connectionsPath, &connections); err != nil {
			return err
		}
		for _, conn := range connections {
			if _, ok := areas[conn.From]; !ok {
				return errors.Errorf("connection references unknown location %q", conn.From)
			}
			if _, ok := areas[conn.To]; !ok {
				return errors.Errorf("connection references unknown location %q", conn.To)
			}
		}
	}

	idx.mu.Lock()
	idx.pkg = pkg
	idx.levels = levels
	idx.levelOrder = levelOrder
	idx.groups = groups
	idx.areas = areas
	idx.connections = connections
	idx.mu.Unlock()

	return nil
}

// levelLess orders level names numerically where possible, so level "10"
// comes after "2" instead of before it. Numeric names sort before
// non-numeric ones; the rest fall back to string order.
func levelLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

func readYamlFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

func eachYamlFile(dir string, fn func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "reading %s", dir)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		if err := fn(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
