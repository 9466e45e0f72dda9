package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// procCPUInfoPath is a var, not a const, so tests can point it at a
// nonexistent path to exercise the probe-failure fallback.
var procCPUInfoPath = "/proc/cpuinfo"

// parseProcCPUInfo reads the key: value lines of the *first* processor block
// in a /proc/cpuinfo stream into a flat map, trimming surrounding whitespace
// from both keys and values. It stops at the first blank line, since every
// processor block on a homogeneous host reports the same identity fields.
// It is a pure function of its input so it can be exercised directly against
// fixture text, independent of actually running on Linux.
func parseProcCPUInfo(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	started := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if started {
				break
			}
			continue
		}
		started = true
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		fields[key] = value
	}
	return fields
}

// buildLinuxRawRecord translates the flat key/value fields parsed from
// /proc/cpuinfo into a RawRecord, resolving an ARM "CPU implementer" hex code
// through catalog's conversion table since /proc/cpuinfo reports it as a
// numeric code rather than a vendor name.
func buildLinuxRawRecord(fields map[string]string, catalog *Catalog) RawRecord {
	features := mapset.NewThreadUnsafeSet[string]()
	flagsField := fields["flags"]
	if flagsField == "" {
		flagsField = fields["Features"]
	}
	for _, f := range strings.Fields(flagsField) {
		features.Add(f)
	}

	vendor := fields["vendor_id"]
	if vendor == "" {
		vendor = catalog.ARMVendor(fields["CPU implementer"])
	}

	extra := map[string]string{"os": "linux"}
	if part := fields["CPU part"]; part != "" {
		extra["CPU part"] = part
	}

	return RawRecord{
		Architecture: runtime.GOARCH,
		Vendor:       vendor,
		Features:     features,
		Extra:        extra,
	}
}

// probeHost never fails: if /proc/cpuinfo cannot be opened (missing,
// permission denied, or otherwise), it logs a warning and degrades to the
// generic fallback record rather than propagating the error to the caller.
func probeHost(catalog *Catalog) RawRecord {
	f, err := os.Open(procCPUInfoPath)
	if err != nil {
		slog.Warn("cpu: unable to read /proc/cpuinfo, falling back to generic host record", "path", procCPUInfoPath, "error", err)
		return genericRawRecord()
	}
	defer f.Close()

	fields := parseProcCPUInfo(f)
	return buildLinuxRawRecord(fields, catalog)
}
