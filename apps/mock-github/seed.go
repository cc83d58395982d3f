package main

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile is the on-disk shape of seed.yaml.
type seedFile struct {
	Repos []seedRepo `yaml:"repos"`
}

type seedRepo struct {
	Owner         string                       `yaml:"owner"`
	Repo          string                       `yaml:"repo"`
	Description   string                       `yaml:"description"`
	Stars         int                          `yaml:"stars"`
	Forks         int                          `yaml:"forks"`
	Language      string                       `yaml:"language"`
	SizeKB        int                          `yaml:"sizeKb"`
	DefaultBranch string                       `yaml:"defaultBranch"`
	Branches      map[string]map[string]string `yaml:"branches"`
}

// seedRepos loads the embedded fixture repos into the store.
func seedRepos(s *store) error {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return fmt.Errorf("parse seed.yaml: %w", err)
	}

	for _, r := range f.Repos {
		if r.Owner == "" || r.Repo == "" {
			return fmt.Errorf("seed repo missing owner or repo: %+v", r)
		}
		if r.DefaultBranch == "" {
			r.DefaultBranch = "main"
		}
		s.add(&repoState{
			Owner:         r.Owner,
			Repo:          r.Repo,
			Description:   r.Description,
			Stars:         r.Stars,
			Forks:         r.Forks,
			Language:      r.Language,
			SizeKB:        r.SizeKB,
			DefaultBranch: r.DefaultBranch,
			Branches:      r.Branches,
		})
	}
	return nil
}
