// Package content is the read-only store of biography, skills and projects.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio-backend/internal/models"
)

//go:embed portfolio.yaml
var defaultPortfolio []byte

type Store struct {
	portfolio models.Portfolio
	byID      map[string]int
}

// Load reads the portfolio from path, or from the embedded copy when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Parse(defaultPortfolio)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Store, error) {
	var p models.Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	if strings.TrimSpace(p.Personal.Name) == "" {
		return nil, fmt.Errorf("content: personal.name is required")
	}
	if p.Personal.ShortName == "" {
		p.Personal.ShortName = strings.Fields(p.Personal.Name)[0]
	}

	byID := make(map[string]int, len(p.Projects))
	for i, proj := range p.Projects {
		if proj.ID == "" {
			return nil, fmt.Errorf("content: project %d has no id", i)
		}
		if _, dup := byID[proj.ID]; dup {
			return nil, fmt.Errorf("content: duplicate project id %q", proj.ID)
		}
		if !proj.Category.Valid() {
			return nil, fmt.Errorf("content: project %q has unknown category %q", proj.ID, proj.Category)
		}
		byID[proj.ID] = i
	}

	return &Store{portfolio: p, byID: byID}, nil
}

func (s *Store) Personal() models.PersonalInfo {
	return s.portfolio.Personal
}

func (s *Store) Assistant() models.AssistantProfile {
	return s.portfolio.Assistant
}

// Skills returns a copy in display order.
func (s *Store) Skills() []models.SkillCategory {
	out := make([]models.SkillCategory, len(s.portfolio.Skills))
	for i, c := range s.portfolio.Skills {
		out[i] = models.SkillCategory{Category: c.Category, Skills: append([]string(nil), c.Skills...)}
	}
	return out
}

// Projects returns a copy in display order.
func (s *Store) Projects() []models.Project {
	out := make([]models.Project, len(s.portfolio.Projects))
	for i, p := range s.portfolio.Projects {
		out[i] = cloneProject(p)
	}
	return out
}

func (s *Store) Project(id string) (models.Project, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Project{}, false
	}
	return cloneProject(s.portfolio.Projects[i]), true
}

func (s *Store) Portfolio() models.Portfolio {
	return models.Portfolio{
		Personal:  s.portfolio.Personal,
		Skills:    s.Skills(),
		Projects:  s.Projects(),
		Assistant: s.portfolio.Assistant,
	}
}

func cloneProject(p models.Project) models.Project {
	p.Technologies = append([]string(nil), p.Technologies...)
	if p.Details != nil {
		d := *p.Details
		d.Artifacts = append([]string(nil), d.Artifacts...)
		p.Details = &d
	}
	return p
}
