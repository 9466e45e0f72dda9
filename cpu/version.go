package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"
)

// versionSpec is a compiled disjunction of version ranges, e.g. parsed from
// "4.6:4.8.5,9.0:".
type versionSpec struct {
	raw  string
	alts []versionRange
}

type versionRange struct {
	exact bool
	value []int // used when exact

	hasLow  bool
	low     []int
	hasHigh bool
	high    []int
}

// parseVersionComponents splits a dot-separated numeric version into its
// integer components. "5.1" and "5.1.0" compare equal because missing
// components are treated as 0 by compareVersionComponents, not by padding here.
func parseVersionComponents(v string) ([]int, error) {
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("archspec: malformed version component %q in %q: %w", p, v, err)
		}
		out[i] = n
	}
	return out, nil
}

// compareVersionComponents compares two component slices, treating missing
// trailing components as 0.
func compareVersionComponents(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// parseVersionSpec parses a version-spec string per §4.7: "A:B" (closed),
// "A:" (open upper), ":B" (open lower), "X" (exact), with "," forming a
// disjunction. Malformed specs produce a *CatalogError, since they are only
// ever encountered while building the catalog's compiler-entry tables.
func parseVersionSpec(raw string) (*versionSpec, error) {
	spec := &versionSpec{raw: raw}
	for _, alt := range strings.Split(raw, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return nil, newCatalogError("empty alternative in version spec \"" + raw + "\"")
		}
		var r versionRange
		if !strings.Contains(alt, ":") {
			v, err := parseVersionComponents(alt)
			if err != nil {
				return nil, wrapCatalogError(err, "malformed version spec %q", raw)
			}
			r = versionRange{exact: true, value: v}
		} else {
			parts := strings.SplitN(alt, ":", 2)
			low, high := parts[0], parts[1]
			if low != "" {
				v, err := parseVersionComponents(low)
				if err != nil {
					return nil, wrapCatalogError(err, "malformed version spec %q", raw)
				}
				r.hasLow = true
				r.low = v
			}
			if high != "" {
				v, err := parseVersionComponents(high)
				if err != nil {
					return nil, wrapCatalogError(err, "malformed version spec %q", raw)
				}
				r.hasHigh = true
				r.high = v
			}
		}
		spec.alts = append(spec.alts, r)
	}
	return spec, nil
}

// matches reports whether target satisfies any alternative in the spec.
func (s *versionSpec) matches(target string) (bool, error) {
	v, err := parseVersionComponents(target)
	if err != nil {
		return false, err
	}
	for _, alt := range s.alts {
		if alt.exact {
			if compareVersionComponents(v, alt.value) == 0 {
				return true, nil
			}
			continue
		}
		if alt.hasLow && compareVersionComponents(v, alt.low) < 0 {
			continue
		}
		if alt.hasHigh && compareVersionComponents(v, alt.high) > 0 {
			continue
		}
		return true, nil
	}
	return false, nil
}
