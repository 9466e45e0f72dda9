//go:build !linux && !darwin

package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// probeHost has no platform-specific detection on this GOOS; it reports the
// generic ISA root for the running architecture with no vendor or features,
// which selectHost resolves to that architecture's root catalog node.
func probeHost(catalog *Catalog) RawRecord {
	return genericRawRecord()
}
