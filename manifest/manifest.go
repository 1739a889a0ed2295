// Package manifest handles palette.toml ensemble definitions: a
// declarative file format for registering whole ensemble trees at
// startup.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/cmdkit/ensemble/ensemble"
)

// Palette represents one palette.toml file: metadata plus an ordered
// set of ensembles and their scripted parts.
type Palette struct {
	Palette   Meta          `toml:"palette"`
	Ensembles []EnsembleDef `toml:"ensemble"`
	Parts     []PartDef     `toml:"part"`

	// Path is the file the palette was loaded from (set at load time).
	Path string `toml:"-"`
}

// Meta contains palette metadata.
type Meta struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// EnsembleDef declares one ensemble by its space-separated path.
// Parents must appear before their sub-ensembles.
type EnsembleDef struct {
	Path string `toml:"path"`
}

// PartDef declares one scripted part of a declared ensemble.
type PartDef struct {
	Ensemble string `toml:"ensemble"`
	Name     string `toml:"name"`
	Args     string `toml:"args"`
	Body     string `toml:"body"`
}

// Load parses a palette file.
func Load(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var p Palette
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid palette %s: %w", path, err)
	}
	return &p, nil
}

// Parse reads a palette from TOML source without touching the
// filesystem.
func Parse(source string) (*Palette, error) {
	var p Palette
	if err := toml.Unmarshal([]byte(source), &p); err != nil {
		return nil, fmt.Errorf("parse error in palette: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	return &p, nil
}

func (p *Palette) validate() error {
	declared := make(map[string]bool, len(p.Ensembles))
	for _, e := range p.Ensembles {
		if e.Path == "" {
			return fmt.Errorf("ensemble with empty path")
		}
		declared[e.Path] = true
	}
	for _, part := range p.Parts {
		if part.Name == "" {
			return fmt.Errorf("part with no name (ensemble %q)", part.Ensemble)
		}
		if !declared[part.Ensemble] {
			return fmt.Errorf("part %q references undeclared ensemble %q", part.Name, part.Ensemble)
		}
	}
	return nil
}

// Register creates every declared ensemble and part in the registry,
// in declaration order.
func (p *Palette) Register(reg *ensemble.Registry) error {
	for _, e := range p.Ensembles {
		if err := reg.CreateEnsemble(e.Path); err != nil {
			return fmt.Errorf("cannot create ensemble %q: %w", e.Path, err)
		}
	}
	for _, part := range p.Parts {
		ens, err := reg.FindEnsemblePath(part.Ensemble)
		if err != nil {
			return fmt.Errorf("cannot resolve ensemble %q for part %q: %w", part.Ensemble, part.Name, err)
		}
		if _, err := reg.AddScriptPart(ens, part.Name, part.Args, part.Body); err != nil {
			return fmt.Errorf("cannot add part %q to %q: %w", part.Name, part.Ensemble, err)
		}
	}
	return nil
}
