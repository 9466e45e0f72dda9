package cpu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CatalogError reports a defect in the microarchitecture catalog: a dangling
// parent reference, a cycle, a malformed version spec, or a malformed alias
// predicate, all raised while the catalog is built. The one defect found
// later is a catalog that lacks the root node for the running architecture,
// which is reported when Host selects a node.
type CatalogError struct {
	msg   string
	cause error
}

func (e *CatalogError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("archspec: catalog error: %s: %s", e.msg, e.cause)
	}
	return fmt.Sprintf("archspec: catalog error: %s", e.msg)
}

func (e *CatalogError) Unwrap() error {
	return e.cause
}

func newCatalogError(msg string) error {
	return &CatalogError{msg: msg}
}

func wrapCatalogError(cause error, msg string, args ...any) error {
	return &CatalogError{msg: fmt.Sprintf(msg, args...), cause: errors.WithStack(cause)}
}

// UnsupportedMicroarchitectureError is returned when the (microarchitecture,
// compiler) pair is known to the catalog but no version range in its compiler
// entries matches the requested version.
type UnsupportedMicroarchitectureError struct {
	Microarchitecture string
	Compiler          string
	Version           string
	SupportedRanges   []string
}

func (e *UnsupportedMicroarchitectureError) Error() string {
	return fmt.Sprintf(
		"archspec: %s@%s does not support microarchitecture %q; supported version ranges: %s",
		e.Compiler, e.Version, e.Microarchitecture, strings.Join(e.SupportedRanges, ", "),
	)
}
