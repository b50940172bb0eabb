// Package compilers holds the static registry of languages and compiler
// definitions consumed by decoded session states. It resolves compiler ids
// referenced by compiler panes; it never invokes anything.
package compilers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

//go:embed definitions.json
var definitionsJSON []byte

// Language describes a selectable source language.
type Language struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions,omitempty"`
	Example    string   `json:"example,omitempty"`
}

// Compiler describes one selectable compiler. Fields left unset by a
// specific compiler entry inherit from the language's base definition.
type Compiler struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Lang           string `json:"lang"`
	Exe            string `json:"exe,omitempty"`
	Options        string `json:"options,omitempty"`
	IntelAsm       string `json:"intelAsm,omitempty"`
	SupportsBinary bool   `json:"supportsBinary,omitempty"`
	Version        string `json:"version,omitempty"`
}

// definitions is the on-disk shape of the embedded registry file.
type definitions struct {
	Languages []struct {
		Language
		// BaseCompiler is merged under every compiler entry of the
		// language (JSON merge-patch, so entries override field by
		// field).
		BaseCompiler json.RawMessage   `json:"baseCompiler,omitempty"`
		Compilers    []json.RawMessage `json:"compilers"`
	} `json:"languages"`
}

// Registry resolves languages and compiler ids.
type Registry struct {
	languages []Language
	byLang    map[string][]Compiler
	byID      map[string]Compiler
}

// NewRegistry parses registry definitions, applying base-compiler
// inheritance per language.
func NewRegistry(data []byte) (*Registry, error) {
	var defs definitions
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}

	r := &Registry{
		byLang: map[string][]Compiler{},
		byID:   map[string]Compiler{},
	}
	for _, lang := range defs.Languages {
		if lang.ID == "" {
			return nil, fmt.Errorf("language with empty id")
		}
		r.languages = append(r.languages, lang.Language)

		base := lang.BaseCompiler
		if len(base) == 0 {
			base = json.RawMessage("{}")
		}
		for i, entry := range lang.Compilers {
			merged, err := jsonpatch.MergePatch(base, entry)
			if err != nil {
				return nil, fmt.Errorf("language %s compiler %d: %w", lang.ID, i, err)
			}
			var c Compiler
			if err := json.Unmarshal(merged, &c); err != nil {
				return nil, fmt.Errorf("language %s compiler %d: %w", lang.ID, i, err)
			}
			if c.ID == "" {
				return nil, fmt.Errorf("language %s compiler %d: missing id", lang.ID, i)
			}
			c.Lang = lang.ID
			if _, dup := r.byID[c.ID]; dup {
				return nil, fmt.Errorf("duplicate compiler id %q", c.ID)
			}
			r.byLang[lang.ID] = append(r.byLang[lang.ID], c)
			r.byID[c.ID] = c
		}
	}
	sort.Slice(r.languages, func(i, j int) bool { return r.languages[i].ID < r.languages[j].ID })
	return r, nil
}

// Default is the registry built from the embedded definitions file.
var Default *Registry

func init() {
	var err error
	Default, err = NewRegistry(definitionsJSON)
	if err != nil {
		panic(fmt.Errorf("compilers: loading embedded definitions: %w", err))
	}
}

// Languages lists all known languages, sorted by id.
func (r *Registry) Languages() []Language {
	return r.languages
}

// CompilersFor lists the compilers of one language, in definition order.
func (r *Registry) CompilersFor(langID string) []Compiler {
	return r.byLang[langID]
}

// Lookup resolves a compiler id.
func (r *Registry) Lookup(id string) (Compiler, bool) {
	c, ok := r.byID[id]
	return c, ok
}
