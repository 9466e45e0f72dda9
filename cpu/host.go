package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"runtime"

	mapset "github.com/deckarep/golang-set/v2"
)

// RawRecord is what a platform-specific probe reports before alias
// resolution: the raw vendor string, the raw feature/flag tokens as reported
// by the kernel (Linux) or sysctl (Darwin), and any OS-specific key/value
// leaves (Extra) that alias rules may consult, such as Darwin's
// hw.optional.* booleans.
type RawRecord struct {
	Architecture string
	Vendor       string
	Features     mapset.Set[string]
	Extra        map[string]string
}

// archRoots maps a probe's runtime.GOARCH-derived architecture tag to the
// name of the catalog's generic ISA root for that architecture. A probe's
// best match is always required to descend from this root, which keeps a
// host of one architecture from ever matching a requirement-free root of
// another (generic, ppc64le or riscv64) purely because it requires zero
// features.
var archRoots = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "aarch64",
	"ppc64le": "ppc64le",
	"riscv64": "riscv64",
}

func archRoot(architecture string) string {
	if root, ok := archRoots[architecture]; ok {
		return root
	}
	return "generic"
}

// genericRawRecord is the fallback every platform probe reports when it
// cannot read its OS-specific source (a missing /proc/cpuinfo, a missing or
// failing sysctl binary, a permission error, or simply no probe existing for
// the running GOOS): a host probe never fails outright, it degrades to this
// and lets selectHost resolve it to the running architecture's generic root.
func genericRawRecord() RawRecord {
	return RawRecord{
		Architecture: runtime.GOARCH,
		Vendor:       "generic",
		Features:     mapset.NewThreadUnsafeSet[string](),
		Extra:        map[string]string{"os": runtime.GOOS},
	}
}

// nodeMatches reports whether node is a plausible identity for a host
// reporting vendor and the (alias-resolved) feature set resolved: node must
// belong to the probed architecture's family, its vendor must match (or be
// the generic placeholder), and every feature it requires -- including
// inherited ones -- must be present in resolved.
func nodeMatches(node *Microarchitecture, root, vendor string, resolved mapset.Set[string]) bool {
	if node.Family().name != root && node.name != root {
		return false
	}
	if node.vendor != "generic" && node.vendor != vendor {
		return false
	}
	return node.inherited.IsSubset(resolved)
}

// selectHost picks the catalog node that best describes a probed host: among
// every node that matches per nodeMatches, it prefers the most specific one
// (the longest ancestor chain -- i.e. the deepest in the DAG), breaking ties
// by generation (higher wins) and finally by name, for determinism.
func selectHost(catalog *Catalog, raw RawRecord) (*Microarchitecture, error) {
	root := archRoot(raw.Architecture)
	if _, ok := catalog.Lookup(root); !ok {
		return nil, newCatalogError("catalog has no generic root node \"" + root + "\"")
	}

	resolved := catalog.aliases.resolve(raw.Features, raw.Extra, raw.Vendor, raw.Extra["os"])

	var best *Microarchitecture
	for _, node := range catalog.All() {
		if !nodeMatches(node, root, raw.Vendor, resolved) {
			continue
		}
		if best == nil || betterMatch(node, best) {
			best = node
		}
	}
	if best == nil {
		// No node matched: the probe lacks even some of the root's own
		// features (x86_64 and aarch64 both require a few), so fall back to
		// the architecture's root, whose presence was checked above.
		best, _ = catalog.Lookup(root)
	}
	return best, nil
}

func betterMatch(candidate, current *Microarchitecture) bool {
	cd, bd := len(candidate.ancestors), len(current.ancestors)
	if cd != bd {
		return cd > bd
	}
	if candidate.generation != current.generation {
		return candidate.generation > current.generation
	}
	return candidate.name < current.name
}
