package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// sysctlBinary is a var, not a const, so tests can point it at a nonexistent
// binary to exercise the probe-failure fallback.
var sysctlBinary = "sysctl"

// parseSysctlOutput parses the "key: value" lines produced by `sysctl -a`
// into a flat map. It is a pure function of its input so it can be exercised
// directly against captured fixture output, independent of actually running
// on Darwin.
func parseSysctlOutput(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		fields[key] = value
	}
	return fields
}

// buildDarwinRawRecord translates the flat sysctl key/value fields into a
// RawRecord. Every field is kept verbatim in Extra, since Apple Silicon
// exposes most of its feature set only as individual hw.optional.* booleans
// rather than the space-separated machdep.cpu.features string Intel Macs
// report, and alias rules consult Extra directly to translate them.
func buildDarwinRawRecord(fields map[string]string) RawRecord {
	features := mapset.NewThreadUnsafeSet[string]()
	for _, key := range []string{"machdep.cpu.features", "machdep.cpu.leaf7_features"} {
		for _, f := range strings.Fields(fields[key]) {
			features.Add(strings.ToLower(f))
		}
	}

	vendor := fields["machdep.cpu.vendor"]
	if vendor == "" {
		vendor = "Apple"
	}

	extra := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		extra[k] = v
	}
	extra["os"] = "darwin"

	return RawRecord{
		Architecture: runtime.GOARCH,
		Vendor:       vendor,
		Features:     features,
		Extra:        extra,
	}
}

// probeHost never fails: if sysctl cannot be run (missing binary, permission
// denied, or otherwise), it logs a warning and degrades to the generic
// fallback record rather than propagating the error to the caller.
func probeHost(catalog *Catalog) RawRecord {
	var stdout bytes.Buffer
	cmd := exec.Command(sysctlBinary, "-a")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		slog.Warn("cpu: unable to run sysctl -a, falling back to generic host record", "error", err)
		return genericRawRecord()
	}

	fields := parseSysctlOutput(&stdout)
	return buildDarwinRawRecord(fields)
}
