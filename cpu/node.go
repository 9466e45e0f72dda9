package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// CompilerEntry ties a version range to the flags a compiler should use to
// optimize for the microarchitecture that owns (or inherits) it.
type CompilerEntry struct {
	RawVersions string
	FlagsTmpl   string
	AltName     string
	Warnings    string

	spec *versionSpec
}

// Microarchitecture is a single node in the catalog's ancestry DAG. Once the
// catalog has been built, every Microarchitecture value is immutable; Name is
// its identity for both equality and map-keying purposes.
type Microarchitecture struct {
	name       string
	vendor     string
	parents    []*Microarchitecture
	features   mapset.Set[string]
	compilers  map[string][]CompilerEntry
	generation int

	// populated once, at catalog-build time, since the graph never changes
	// after that point.
	ancestors []*Microarchitecture
	inherited mapset.Set[string]
}

// Name is the node's unique, case-sensitive identifier.
func (m *Microarchitecture) Name() string { return m.name }

// Vendor is a free-form string, or the sentinel "generic" for family/fallback roots.
func (m *Microarchitecture) Vendor() string { return m.vendor }

// Generation is a tiebreaker used during host selection; higher is newer.
func (m *Microarchitecture) Generation() int { return m.generation }

// Parents returns the node's direct parents in declaration order; Parents()[0]
// is the preferred parent used to determine Family().
func (m *Microarchitecture) Parents() []*Microarchitecture {
	out := make([]*Microarchitecture, len(m.parents))
	copy(out, m.parents)
	return out
}

// Features returns the features owned directly by this node, sorted. It does
// not include inherited features; use Contains to query the full set.
func (m *Microarchitecture) Features() []string {
	out := m.features.ToSlice()
	sort.Strings(out)
	return out
}

// Ancestors returns every node reachable via Parents, transitively, ordered
// first-parent depth-first and deduplicated on first occurrence. Self is
// excluded.
func (m *Microarchitecture) Ancestors() []*Microarchitecture {
	out := make([]*Microarchitecture, len(m.ancestors))
	copy(out, m.ancestors)
	return out
}

// Family is the final element of Ancestors, or self if the node has no
// parents. It represents the lowest-common-denominator ISA base shared by
// every node in this compatibility class.
func (m *Microarchitecture) Family() *Microarchitecture {
	if len(m.ancestors) == 0 {
		return m
	}
	return m.ancestors[len(m.ancestors)-1]
}

// Contains reports whether the node, or any of its ancestors, owns feature.
func (m *Microarchitecture) Contains(feature string) bool {
	return m.inherited.Contains(feature)
}

// Equal compares by name, matching the catalog's case-sensitive, unique naming.
func (m *Microarchitecture) Equal(other *Microarchitecture) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.name == other.name
}

// ToDict is a serializable snapshot of the node. The emitted features are the
// node's own (non-inherited) feature list, sorted -- matching the behavior
// observed in the reference implementation.
func (m *Microarchitecture) ToDict() map[string]any {
	parentNames := make([]string, len(m.parents))
	for i, p := range m.parents {
		parentNames[i] = p.name
	}
	return map[string]any{
		"name":       m.name,
		"vendor":     m.vendor,
		"features":   m.Features(),
		"parents":    parentNames,
		"generation": m.generation,
	}
}
