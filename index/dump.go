// Copyright © 2024 The Fuus Army Knife authors

package index

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ion-fusion/fuus-army-knife/parser/token"
)

type dumpIndex struct {
	PackagePath string       `yaml:"package_path"`
	ModulePaths []string     `yaml:"module_paths"`
	Modules     []dumpModule `yaml:"modules"`
	Scripts     []dumpScript `yaml:"scripts,omitempty"`
}

type dumpModule struct {
	Name     string            `yaml:"name"`
	Language string            `yaml:"language"`
	File     string            `yaml:"file,omitempty"`
	Requires []dumpRequire     `yaml:"requires,omitempty"`
	Provides map[string]string `yaml:"provides,omitempty"`
}

type dumpRequire struct {
	Module string            `yaml:"module"`
	Type   string            `yaml:"type"`
	Names  []string          `yaml:"names,omitempty"`
	Mapped map[string]string `yaml:"mapped,omitempty"`
}

type dumpScript struct {
	Name            string   `yaml:"name"`
	TopLevelModules []string `yaml:"top_level_modules,omitempty"`
	GlobalBindings  []string `yaml:"global_bindings,omitempty"`
	Files           []string `yaml:"files"`
}

// Dump writes a YAML description of the index to w.  Spans are written as
// file:line:col locations.
func (idx *Index) Dump(w io.Writer) error {
	d := dumpIndex{
		PackagePath: idx.packagePath,
		ModulePaths: idx.modulePaths,
	}
	for _, m := range idx.Modules() {
		dm := dumpModule{
			Name:     m.Name,
			Language: m.Language,
			File:     m.File.Name,
		}
		for _, r := range m.Requires {
			dm.Requires = append(dm.Requires, idx.dumpRequire(r))
		}
		if len(m.Provides) > 0 {
			dm.Provides = make(map[string]string, len(m.Provides))
			for name, span := range m.Provides {
				dm.Provides[name] = locate(m.File, span)
			}
		}
		d.Modules = append(d.Modules, dm)
	}
	for _, s := range idx.Scripts() {
		ds := dumpScript{
			Name:            s.Name,
			TopLevelModules: s.TopLevelModules,
			GlobalBindings:  s.GlobalBindings,
		}
		for _, f := range s.Files {
			ds.Files = append(ds.Files, f.Name)
		}
		d.Scripts = append(d.Scripts, ds)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to dump index: %w", err)
	}
	return enc.Close()
}

func (idx *Index) dumpRequire(r RequireForm) dumpRequire {
	dr := dumpRequire{
		Module: idx.Module(r.Module).Name,
		Type:   r.Type.String(),
	}
	for _, o := range r.Names {
		dr.Names = append(dr.Names, o.Name)
	}
	if len(r.Mapped) > 0 {
		dr.Mapped = make(map[string]string, len(r.Mapped))
		for from, o := range r.Mapped {
			dr.Mapped[from] = o.Name
		}
	}
	return dr
}

func locate(f *File, span token.Span) string {
	return token.Locate(f.Name, f.Source, span.Start).String()
}
