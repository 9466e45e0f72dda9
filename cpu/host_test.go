package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectHostPicksDeepestExactMatch(t *testing.T) {
	c := testCatalog(t)
	raw := RawRecord{
		Architecture: "amd64",
		Vendor:       "GenuineIntel",
		Features: mapset.NewThreadUnsafeSet(
			"mmx", "sse", "sse2", "sse3", "ssse3", "sse4_1", "sse4_2", "popcnt",
			"aes", "pclmulqdq", "avx", "xsave", "rdrand", "f16c", "avx2", "bmi1",
			"bmi2", "fma", "movbe", "rdseed", "adx",
		),
		Extra: map[string]string{"os": "linux"},
	}
	m, err := selectHost(c, raw)
	require.NoError(t, err)
	assert.Equal(t, "broadwell", m.Name())
}

func TestSelectHostFallsBackToGenericRoot(t *testing.T) {
	c := testCatalog(t)
	raw := RawRecord{
		Architecture: "amd64",
		Vendor:       "SomeNewVendor",
		Features:     mapset.NewThreadUnsafeSet[string](),
		Extra:        map[string]string{"os": "linux"},
	}
	m, err := selectHost(c, raw)
	require.NoError(t, err)
	assert.Equal(t, "x86_64", m.Name())
}

func TestSelectHostArchGatesAcrossFamilies(t *testing.T) {
	c := testCatalog(t)
	// an arm64 probe with no features must resolve to the aarch64 root: the
	// generic, ppc64le and riscv64 roots require zero features and so would
	// match an empty set, and architecture gating alone keeps them out.
	// aarch64 itself requires fp and asimd, so the result comes from
	// selectHost's fallback to the architecture root.
	raw := RawRecord{
		Architecture: "arm64",
		Vendor:       "generic",
		Features:     mapset.NewThreadUnsafeSet[string](),
		Extra:        map[string]string{"os": "linux"},
	}
	m, err := selectHost(c, raw)
	require.NoError(t, err)
	assert.Equal(t, "aarch64", m.Name())
}

func TestSelectHostARMLineage(t *testing.T) {
	c := testCatalog(t)
	raw := RawRecord{
		Architecture: "arm64",
		Vendor:       "Cavium",
		Features: mapset.NewThreadUnsafeSet(
			"fp", "asimd", "evtstrm", "aes", "pmull", "sha1", "sha2", "crc32", "cpuid",
		),
		Extra: map[string]string{"os": "linux"},
	}
	m, err := selectHost(c, raw)
	require.NoError(t, err)
	assert.Equal(t, "thunderx2", m.Name())
}

func TestGenericRawRecordMatchesRunningArchRoot(t *testing.T) {
	c := testCatalog(t)
	raw := genericRawRecord()
	m, err := selectHost(c, raw)
	require.NoError(t, err)
	assert.Equal(t, archRoot(raw.Architecture), m.Name())
}
