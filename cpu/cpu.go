// Package cpu provides a catalog of CPU microarchitectures, a partial order
// for comparing them, host detection, and compiler optimization flag
// resolution.
package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"sync"
)

var (
	catalogOnce  sync.Once
	catalog      *Catalog
	catalogBuild error
)

// defaultCatalog lazily builds the package's catalog on first use, from the
// embedded knowledge base optionally overridden by ARCHSPEC_CPU_DIR and
// overlaid by ARCHSPEC_EXTENSION_CPU_DIR. The build runs at most once; every
// caller thereafter shares the same immutable result.
func defaultCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		base, err := loadBase()
		if err != nil {
			catalogBuild = err
			return
		}
		ext, err := loadExtension()
		if err != nil {
			catalogBuild = err
			return
		}
		catalog, catalogBuild = buildCatalog(mergeKnowledgeBases(base, ext))
	})
	return catalog, catalogBuild
}

// Microarchitectures returns every node known to the catalog, sorted by name.
func Microarchitectures() ([]*Microarchitecture, error) {
	c, err := defaultCatalog()
	if err != nil {
		return nil, err
	}
	return c.All(), nil
}

// Get looks up a microarchitecture by its catalog name.
func Get(name string) (*Microarchitecture, error) {
	c, err := defaultCatalog()
	if err != nil {
		return nil, err
	}
	m, ok := c.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("archspec: no such microarchitecture %q", name)
	}
	return m, nil
}

// Host detects the microarchitecture of the machine this process is running
// on: it probes the platform (Linux /proc/cpuinfo, Darwin sysctl -a, or a
// generic fallback elsewhere), resolves the probe's raw tokens to catalog
// feature names via the alias table, and selects the most specific catalog
// node whose requirements the resolved feature set satisfies. The probe step
// itself never fails -- it degrades to a generic record on any I/O error --
// so Host returns an error only when the catalog fails to build or lacks the
// root node for the running architecture.
func Host() (*Microarchitecture, error) {
	c, err := defaultCatalog()
	if err != nil {
		return nil, err
	}
	raw := probeHost(c)
	return selectHost(c, raw)
}
