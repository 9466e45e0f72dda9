package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"strings"
)

// OptimizationFlags resolves the flags that compiler at version should use to
// emit code optimized for m.
//
// It walks m and then its ancestors (in Ancestors order) looking for a
// compilers[compiler] table. If none is found anywhere in the ancestry, the
// compiler is simply unknown to this lineage and the empty string is returned
// -- this is silent, by design: an unrecognized compiler name is not an error.
// If a table is found but no entry's version spec matches version, that *is*
// an error: the compiler is known here, and we know it cannot target m.
//
// {name} tokens in the winning entry's flags template are substituted with
// the entry's AltName, or m's own name if AltName is empty -- always m, the
// node the caller asked about, even when the matching table lives on an
// ancestor of m.
func (m *Microarchitecture) OptimizationFlags(compiler, version string) (string, error) {
	lineage := append([]*Microarchitecture{m}, m.ancestors...)

	var table []CompilerEntry
	for _, n := range lineage {
		if t, ok := n.compilers[compiler]; ok {
			table = t
			break
		}
	}
	if table == nil {
		return "", nil
	}

	for _, entry := range table {
		ok, err := entry.spec.matches(version)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		name := entry.AltName
		if name == "" {
			name = m.name
		}
		if entry.Warnings != "" {
			slog.Warn("archspec: compiler flags warning",
				slog.String("microarchitecture", m.name),
				slog.String("compiler", compiler),
				slog.String("version", version),
				slog.String("warning", entry.Warnings),
			)
		}
		return strings.ReplaceAll(entry.FlagsTmpl, "{name}", name), nil
	}

	ranges := make([]string, len(table))
	for i, entry := range table {
		ranges[i] = entry.RawVersions
	}
	return "", &UnsupportedMicroarchitectureError{
		Microarchitecture: m.name,
		Compiler:          compiler,
		Version:           version,
		SupportedRanges:   ranges,
	}
}
