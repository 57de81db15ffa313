package seed

import (
	_ "embed"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed groups.yml
var defaultGroupsYAML []byte

// GroupFixture is one group definition in a fixture file.
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type groupFile struct {
	Groups []GroupFixture `yaml:"groups"`
}

// LoadGroups parses a YAML group fixture and validates every entry.
func LoadGroups(data []byte) ([]GroupFixture, error) {
	var file groupFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse group fixtures: %w", err)
	}

	seen := make(map[string]bool, len(file.Groups))
	for i, g := range file.Groups {
		if err := validation.ValidateGroupSlug(g.Slug); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		if err := validation.ValidateGroupTitle(g.Title); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Slug, err)
		}
		if seen[g.Slug] {
			return nil, fmt.Errorf("group %q defined twice", g.Slug)
		}
		seen[g.Slug] = true
	}
	return file.Groups, nil
}

// DefaultGroups returns the built-in group fixtures.
func DefaultGroups() []GroupFixture {
	groups, err := LoadGroups(defaultGroupsYAML)
	if err != nil {
		panic(err)
	}
	return groups
}

// Groups upserts fixtures by slug and returns the stored rows.
func Groups(db *gorm.DB, fixtures []GroupFixture) ([]models.Group, error) {
	out := make([]models.Group, 0, len(fixtures))
	for _, f := range fixtures {
		group := models.Group{Title: f.Title, Slug: f.Slug, Description: f.Description}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error; err != nil {
			return nil, fmt.Errorf("seed group %q: %w", f.Slug, err)
		}
		if err := db.Where("slug = ?", f.Slug).First(&group).Error; err != nil {
			return nil, fmt.Errorf("reload group %q: %w", f.Slug, err)
		}
		out = append(out, group)
	}
	return out, nil
}
