package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnconditionalRule(t *testing.T) {
	rules, err := compileAliasRules([]rawAliasRule{
		{Raw: "sse4_1", Feature: "sse4.1"},
	})
	require.NoError(t, err)
	table := &aliasTable{rules: rules}

	tokens := setOf("sse4_1", "mmx")
	resolved := table.resolve(tokens, nil, "GenuineIntel", "linux")

	assert.True(t, resolved.Contains("sse4.1"))
	assert.False(t, resolved.Contains("sse4_1"))
	assert.True(t, resolved.Contains("mmx"))
}

func TestResolveConditionalRuleGatesOnVendorAndOS(t *testing.T) {
	rules, err := compileAliasRules([]rawAliasRule{
		{Raw: "hw.optional.arm.FEAT_SVE", Feature: "sve", When: `os == "darwin" && vendor == "Apple"`},
	})
	require.NoError(t, err)
	table := &aliasTable{rules: rules}

	extra := map[string]string{"hw.optional.arm.FEAT_SVE": "1"}

	resolved := table.resolve(setOf(), extra, "Apple", "darwin")
	assert.True(t, resolved.Contains("sve"))

	resolved = table.resolve(setOf(), extra, "GenuineIntel", "darwin")
	assert.False(t, resolved.Contains("sve"))

	resolved = table.resolve(setOf(), extra, "Apple", "linux")
	assert.False(t, resolved.Contains("sve"))
}

func TestResolveConditionalRuleGatesOnVendor(t *testing.T) {
	rules, err := compileAliasRules([]rawAliasRule{
		{Raw: "sha", Feature: "sha_ni", When: `vendor == "GenuineIntel" || vendor == "AuthenticAMD"`},
	})
	require.NoError(t, err)
	table := &aliasTable{rules: rules}

	resolved := table.resolve(setOf("sha"), nil, "GenuineIntel", "linux")
	assert.True(t, resolved.Contains("sha_ni"))

	resolved = table.resolve(setOf("sha"), nil, "Cavium", "linux")
	assert.False(t, resolved.Contains("sha_ni"))
	assert.True(t, resolved.Contains("sha"), "unmatched raw token should pass through unchanged")
}

func TestCompileAliasRulesRejectsMalformedPredicate(t *testing.T) {
	_, err := compileAliasRules([]rawAliasRule{
		{Raw: "x", Feature: "y", When: "os =="},
	})
	require.Error(t, err)
}

func setOf(tokens ...string) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(tokens...)
}
