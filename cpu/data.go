package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"archspec/internal/util"
)

//go:embed data/microarchitectures.json
var embeddedKnowledgeBase embed.FS

const embeddedKnowledgeBasePath = "data/microarchitectures.json"

// baseDirEnv points at a directory holding a replacement microarchitectures.json,
// overriding the embedded knowledge base wholesale.
const baseDirEnv = "ARCHSPEC_CPU_DIR"

// extensionDirEnv points at a directory holding a microarchitectures.json that is
// merged on top of the base knowledge base, overriding and adding entries.
const extensionDirEnv = "ARCHSPEC_EXTENSION_CPU_DIR"

const knowledgeBaseFile = "microarchitectures.json"

type rawCompilerEntry struct {
	Versions string `json:"versions"`
	Flags    string `json:"flags"`
	Name     string `json:"name,omitempty"`
	Warnings string `json:"warnings,omitempty"`
}

type rawMicroarchitecture struct {
	From       []string                      `json:"from"`
	Vendor     string                        `json:"vendor"`
	Features   []string                      `json:"features"`
	Generation int                           `json:"generation,omitempty"`
	Compilers  map[string][]rawCompilerEntry `json:"compilers,omitempty"`
}

type rawAliasRule struct {
	Raw     string `json:"raw"`
	Feature string `json:"feature"`
	When    string `json:"when,omitempty"`
}

type rawKnowledgeBase struct {
	Microarchitectures map[string]rawMicroarchitecture `json:"microarchitectures"`
	FeatureAliases     []rawAliasRule                  `json:"feature_aliases"`
	Conversions        struct {
		ARMImplementerVendor map[string]string `json:"arm_implementer_vendor"`
	} `json:"conversions"`
}

func readKnowledgeBaseFile(dir string) (*rawKnowledgeBase, error) {
	exists, err := util.DirectoryExists(dir)
	if err != nil {
		return nil, wrapCatalogError(err, "%q", dir)
	}
	if !exists {
		return nil, newCatalogError("knowledge base directory \"" + dir + "\" does not exist")
	}

	path := filepath.Join(dir, knowledgeBaseFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapCatalogError(err, "unable to read knowledge base %q", path)
	}
	var kb rawKnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, wrapCatalogError(err, "unable to parse knowledge base %q", path)
	}
	return &kb, nil
}

func readEmbeddedKnowledgeBase() (*rawKnowledgeBase, error) {
	data, err := fs.ReadFile(embeddedKnowledgeBase, embeddedKnowledgeBasePath)
	if err != nil {
		return nil, wrapCatalogError(err, "unable to read embedded knowledge base")
	}
	var kb rawKnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, wrapCatalogError(err, "unable to parse embedded knowledge base")
	}
	return &kb, nil
}

// loadBase returns the knowledge base that seeds the catalog: the file named
// by ARCHSPEC_CPU_DIR/microarchitectures.json if that variable is set,
// otherwise the one embedded in the binary.
func loadBase() (*rawKnowledgeBase, error) {
	if dir := os.Getenv(baseDirEnv); dir != "" {
		path, err := util.AbsPath(dir)
		if err != nil {
			return nil, wrapCatalogError(err, "unable to resolve %s %q", baseDirEnv, dir)
		}
		return readKnowledgeBaseFile(path)
	}
	return readEmbeddedKnowledgeBase()
}

// loadExtension returns the overlay knowledge base named by
// ARCHSPEC_EXTENSION_CPU_DIR, or nil if that variable is unset.
func loadExtension() (*rawKnowledgeBase, error) {
	dir := os.Getenv(extensionDirEnv)
	if dir == "" {
		return nil, nil
	}
	path, err := util.AbsPath(dir)
	if err != nil {
		return nil, wrapCatalogError(err, "unable to resolve %s %q", extensionDirEnv, dir)
	}
	return readKnowledgeBaseFile(path)
}

// mergeKnowledgeBases overlays ext on top of base. A microarchitecture entry
// in ext replaces the base entry of the same name wholesale -- there is no
// field-level or feature-set merge, an overlay node is a complete
// replacement definition, exactly as if the base never declared that node.
// A conversion table in ext likewise replaces the base table of the same name.
// Alias rules are the one section merged by identity: an overlay rule with
// the same raw token replaces the base rule in place, and a novel raw token
// is appended after all base rules.
func mergeKnowledgeBases(base, ext *rawKnowledgeBase) *rawKnowledgeBase {
	if ext == nil {
		return base
	}

	merged := &rawKnowledgeBase{
		Microarchitectures: make(map[string]rawMicroarchitecture, len(base.Microarchitectures)),
	}
	for name, node := range base.Microarchitectures {
		merged.Microarchitectures[name] = node
	}
	for name, overlay := range ext.Microarchitectures {
		merged.Microarchitectures[name] = overlay
	}

	merged.FeatureAliases = mergeAliasRules(base.FeatureAliases, ext.FeatureAliases)

	merged.Conversions.ARMImplementerVendor = base.Conversions.ARMImplementerVendor
	if ext.Conversions.ARMImplementerVendor != nil {
		merged.Conversions.ARMImplementerVendor = ext.Conversions.ARMImplementerVendor
	}

	return merged
}

func mergeAliasRules(base, overlay []rawAliasRule) []rawAliasRule {
	merged := make([]rawAliasRule, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[r.Raw] = i
	}
	for _, r := range overlay {
		if i, found := index[r.Raw]; found {
			merged[i] = r
			continue
		}
		index[r.Raw] = len(merged)
		merged = append(merged, r)
	}
	return merged
}
