package models

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is a seed file listing roadmap definitions.
type Catalog struct {
	Roadmaps []RoadmapDefinition `yaml:"roadmaps"`
}

// Validate rejects catalogs with missing or duplicate ids.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Roadmaps))
	for i, def := range c.Roadmaps {
		id := strings.TrimSpace(def.RoadmapID)
		if id == "" {
			return fmt.Errorf("catalog: roadmap #%d has no id", i+1)
		}
		if seen[id] {
			return fmt.Errorf("catalog: duplicate roadmap id %q", id)
		}
		seen[id] = true
		if err := validateSubtasks(id, "course", def.Courses); err != nil {
			return err
		}
		if err := validateSubtasks(id, "skill", def.Skills); err != nil {
			return err
		}
	}
	return nil
}

func validateSubtasks(roadmapID, kind string, items []Subtask) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("catalog: roadmap %q has a %s without id", roadmapID, kind)
		}
		if seen[id] {
			return fmt.Errorf("catalog: roadmap %q lists %s %q twice", roadmapID, kind, id)
		}
		seen[id] = true
	}
	return nil
}

// Normalized trims ids and fills empty titles with the id.
func (c Catalog) Normalized() Catalog {
	out := Catalog{Roadmaps: make([]RoadmapDefinition, 0, len(c.Roadmaps))}
	for _, def := range c.Roadmaps {
		def.RoadmapID = strings.TrimSpace(def.RoadmapID)
		def.Company = strings.TrimSpace(def.Company)
		def.Courses = normalizeSubtasks(def.Courses)
		def.Skills = normalizeSubtasks(def.Skills)
		out.Roadmaps = append(out.Roadmaps, def)
	}
	return out
}

func normalizeSubtasks(items []Subtask) []Subtask {
	out := make([]Subtask, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			item.Title = item.ID
		}
		out = append(out, item)
	}
	return out
}

func ParseCatalogYAML(data []byte) (Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Catalog{}, fmt.Errorf("catalog: payload is empty")
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog.Normalized(), nil
}

func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	catalog, err := ParseCatalogYAML(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}
