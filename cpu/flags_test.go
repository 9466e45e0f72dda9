package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGet(t *testing.T, c *Catalog, name string) *Microarchitecture {
	t.Helper()
	m, ok := c.Lookup(name)
	require.True(t, ok, "expected catalog to contain %q", name)
	return m
}

func TestOptimizationFlagsSimpleTemplate(t *testing.T) {
	c := testCatalog(t)
	broadwell := mustGet(t, c, "broadwell")

	flags, err := broadwell.OptimizationFlags("gcc", "7.0")
	require.NoError(t, err)
	assert.Equal(t, "-march=broadwell -mtune=broadwell", flags)
}

func TestOptimizationFlagsMultiEntryAltName(t *testing.T) {
	c := testCatalog(t)
	skx := mustGet(t, c, "skylake_avx512")

	flags, err := skx.OptimizationFlags("gcc", "7.5")
	require.NoError(t, err)
	assert.Equal(t, "-march=skylake-avx512 -mtune=skylake-avx512", flags)

	flags, err = skx.OptimizationFlags("gcc", "9.0")
	require.NoError(t, err)
	assert.Equal(t, "-march=skylake-avx512 -mtune=skylake-avx512 -mprefer-vector-width=512", flags)
}

func TestOptimizationFlagsUnsupportedVersion(t *testing.T) {
	c := testCatalog(t)
	skx := mustGet(t, c, "skylake_avx512")

	_, err := skx.OptimizationFlags("gcc", "5.0")
	require.Error(t, err)
	var unsupported *UnsupportedMicroarchitectureError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "skylake_avx512", unsupported.Microarchitecture)
	assert.Equal(t, []string{"6.1,7.1:8.2", "8.3:"}, unsupported.SupportedRanges)
}

func TestOptimizationFlagsWarningAndAltName(t *testing.T) {
	c := testCatalog(t)
	tx2 := mustGet(t, c, "thunderx2")

	flags, err := tx2.OptimizationFlags("gcc", "9.2")
	require.NoError(t, err)
	assert.Equal(t, "-mcpu=thunderx2t99", flags)

	flags, err = tx2.OptimizationFlags("gcc", "5.0")
	require.NoError(t, err)
	assert.Equal(t, "-march=armv8-a+crc+crypto", flags)
}

func TestOptimizationFlagsInheritedFromAncestor(t *testing.T) {
	c := testCatalog(t)
	cannonlake := mustGet(t, c, "cannonlake")

	// cannonlake has no "intel" compiler table of its own; it must be found
	// on its ancestor skylake_avx512, whose own alt_name ("skx") is used
	// since the winning entry supplies one.
	flags, err := cannonlake.OptimizationFlags("intel", "18.5")
	require.NoError(t, err)
	assert.Equal(t, "-march=skx -mtune=skx", flags)
}

func TestOptimizationFlagsUsesQueriedNodeNameWhenNoAltName(t *testing.T) {
	c := testCatalog(t)
	cannonlake := mustGet(t, c, "cannonlake")

	// cannonlake's own gcc table has no alt_name, so {name} resolves to
	// "cannonlake" even though the template text is shared with its ancestry.
	flags, err := cannonlake.OptimizationFlags("gcc", "8.5")
	require.NoError(t, err)
	assert.Equal(t, "-march=cannonlake -mtune=cannonlake", flags)
}

func TestOptimizationFlagsUnknownCompilerIsSilent(t *testing.T) {
	c := testCatalog(t)
	nehalem := mustGet(t, c, "nehalem")

	flags, err := nehalem.OptimizationFlags("msvc", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "", flags)
}

func TestOptimizationFlagsIcelakeClientName(t *testing.T) {
	c := testCatalog(t)
	icelake := mustGet(t, c, "icelake")

	flags, err := icelake.OptimizationFlags("gcc", "8.5")
	require.NoError(t, err)
	assert.Equal(t, "-march=icelake-client -mtune=icelake-client", flags)
}
