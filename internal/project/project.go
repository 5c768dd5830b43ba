// Package project loads the scenesync project file and materializes a
// workspace directory into an instance tree.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultFileName = "scenesync.yaml"

// Project is the on-disk project file. Paths are resolved relative to the
// file's directory when not absolute.
type Project struct {
	Name      string   `yaml:"name"`
	Workspace string   `yaml:"workspace"`
	RootClass string   `yaml:"root_class,omitempty"`
	Ignore    []string `yaml:"ignore,omitempty"`
	Journal   string   `yaml:"journal,omitempty"`

	// Path is where the project was loaded from.
	Path string `yaml:"-"`
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project file %q: %w", path, err)
	}
	p.Path = path

	if p.Name == "" {
		p.Name = "scenesync"
	}
	if p.RootClass == "" {
		p.RootClass = "Folder"
	}

	base := filepath.Dir(path)
	if p.Workspace == "" {
		p.Workspace = base
	} else if !filepath.IsAbs(p.Workspace) {
		p.Workspace = filepath.Join(base, p.Workspace)
	}
	if p.Journal != "" && !filepath.IsAbs(p.Journal) {
		p.Journal = filepath.Join(base, p.Journal)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Project) Validate() error {
	info, err := os.Stat(p.Workspace)
	if err != nil {
		return fmt.Errorf("project workspace: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project workspace %q is not a directory", p.Workspace)
	}
	return nil
}

// Save writes the project file back to its path.
func (p *Project) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project file: %w", err)
	}
	if err := os.WriteFile(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}
