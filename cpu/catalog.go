package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Catalog is the fully resolved microarchitecture DAG, its alias table, and
// its ARM implementer-code conversion table. Once built, a Catalog is
// immutable and safe for concurrent use.
type Catalog struct {
	nodes     map[string]*Microarchitecture
	aliases   *aliasTable
	armVendor map[string]string
}

// Lookup returns the named node, or ok == false if no such node exists.
func (c *Catalog) Lookup(name string) (*Microarchitecture, bool) {
	m, ok := c.nodes[name]
	return m, ok
}

// Names returns every node name in the catalog, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.nodes))
	for name := range c.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All returns every node in the catalog, sorted by name.
func (c *Catalog) All() []*Microarchitecture {
	names := c.Names()
	out := make([]*Microarchitecture, len(names))
	for i, name := range names {
		out[i] = c.nodes[name]
	}
	return out
}

// ARMVendor resolves an ARM "CPU implementer" hex code (e.g. "0x41") to the
// vendor name reported for it in the catalog's conversion table, or "" if the
// code is unknown.
func (c *Catalog) ARMVendor(implementer string) string {
	return c.armVendor[implementer]
}

// buildCatalog compiles a raw, merged knowledge base into a Catalog: it
// allocates one node per entry, links parents by name (failing on any
// dangling reference or cycle), compiles every compiler entry's version spec
// and every alias rule's predicate, and precomputes each node's ancestor
// chain and full (own + inherited) feature set.
func buildCatalog(raw *rawKnowledgeBase) (*Catalog, error) {
	nodes := make(map[string]*Microarchitecture, len(raw.Microarchitectures))
	for name, rm := range raw.Microarchitectures {
		features := mapset.NewThreadUnsafeSet(rm.Features...)
		compilers := make(map[string][]CompilerEntry, len(rm.Compilers))
		for compiler, entries := range rm.Compilers {
			compiled := make([]CompilerEntry, len(entries))
			for i, e := range entries {
				spec, err := parseVersionSpec(e.Versions)
				if err != nil {
					return nil, wrapCatalogError(err, "node %q, compiler %q", name, compiler)
				}
				compiled[i] = CompilerEntry{
					RawVersions: e.Versions,
					FlagsTmpl:   e.Flags,
					AltName:     e.Name,
					Warnings:    e.Warnings,
					spec:        spec,
				}
			}
			compilers[compiler] = compiled
		}
		nodes[name] = &Microarchitecture{
			name:       name,
			vendor:     rm.Vendor,
			features:   features,
			compilers:  compilers,
			generation: rm.Generation,
		}
	}

	for name, rm := range raw.Microarchitectures {
		node := nodes[name]
		node.parents = make([]*Microarchitecture, 0, len(rm.From))
		for _, parentName := range rm.From {
			parent, ok := nodes[parentName]
			if !ok {
				return nil, newCatalogError("node \"" + name + "\" references unknown parent \"" + parentName + "\"")
			}
			node.parents = append(node.parents, parent)
		}
	}

	for _, node := range nodes {
		ancestors, err := computeAncestors(node)
		if err != nil {
			return nil, err
		}
		node.ancestors = ancestors

		inherited := node.features.Clone()
		for _, a := range ancestors {
			inherited = inherited.Union(a.features)
		}
		node.inherited = inherited
	}

	aliasRules, err := compileAliasRules(raw.FeatureAliases)
	if err != nil {
		return nil, err
	}

	armVendor := make(map[string]string, len(raw.Conversions.ARMImplementerVendor))
	for k, v := range raw.Conversions.ARMImplementerVendor {
		armVendor[k] = v
	}

	return &Catalog{
		nodes:     nodes,
		aliases:   &aliasTable{rules: aliasRules},
		armVendor: armVendor,
	}, nil
}

// computeAncestors walks root's parents in declaration order, depth-first,
// deduplicating on first occurrence. A cycle anywhere in the reachable graph
// is reported as a *CatalogError naming root.
func computeAncestors(root *Microarchitecture) ([]*Microarchitecture, error) {
	var out []*Microarchitecture
	seen := make(map[string]bool)
	onStack := make(map[string]bool)
	onStack[root.name] = true

	var visit func(node *Microarchitecture) error
	visit = func(node *Microarchitecture) error {
		for _, parent := range node.parents {
			if onStack[parent.name] {
				return newCatalogError("cycle detected in ancestry of \"" + root.name + "\" at \"" + parent.name + "\"")
			}
			if !seen[parent.name] {
				seen[parent.name] = true
				out = append(out, parent)
			}
			onStack[parent.name] = true
			if err := visit(parent); err != nil {
				return err
			}
			onStack[parent.name] = false
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}
