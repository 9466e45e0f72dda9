// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Command cpu is a small inspector over the archspec microarchitecture
// catalog: it reports the host's detected microarchitecture, looks up
// catalog entries, lists the whole catalog, and resolves compiler
// optimization flags.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"archspec/cpu"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cpu",
	Short: "Inspect the CPU microarchitecture catalog",
	Long:  "cpu inspects the archspec microarchitecture catalog: host detection, lookups, listing, and compiler flag resolution.",
}

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Print the detected microarchitecture of the current host",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cpu.Host()
		if err != nil {
			slog.Error("failed to detect host microarchitecture", slog.String("error", err.Error()))
			return err
		}
		fmt.Println(m.Name())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every microarchitecture in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := cpu.Microarchitectures()
		if err != nil {
			slog.Error("failed to load catalog", slog.String("error", err.Error()))
			return err
		}
		for _, m := range nodes {
			fmt.Printf("%-20s vendor=%-14s generation=%d\n", m.Name(), m.Vendor(), m.Generation())
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Print details about a single microarchitecture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cpu.Get(args[0])
		if err != nil {
			slog.Error("failed to look up microarchitecture", slog.String("name", args[0]), slog.String("error", err.Error()))
			return err
		}
		fmt.Printf("name:       %s\n", m.Name())
		fmt.Printf("vendor:     %s\n", m.Vendor())
		fmt.Printf("generation: %d\n", m.Generation())
		fmt.Printf("features:   %s\n", strings.Join(m.Features(), " "))
		ancestorNames := make([]string, 0, len(m.Ancestors()))
		for _, a := range m.Ancestors() {
			ancestorNames = append(ancestorNames, a.Name())
		}
		fmt.Printf("ancestors:  %s\n", strings.Join(ancestorNames, " "))
		return nil
	},
}

var flagsCmd = &cobra.Command{
	Use:   "flags <name> <compiler> <version>",
	Short: "Resolve the optimization flags a compiler should use for a microarchitecture",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cpu.Get(args[0])
		if err != nil {
			slog.Error("failed to look up microarchitecture", slog.String("name", args[0]), slog.String("error", err.Error()))
			return err
		}
		flags, err := m.OptimizationFlags(args[1], args[2])
		if err != nil {
			slog.Error("failed to resolve optimization flags",
				slog.String("name", args[0]), slog.String("compiler", args[1]), slog.String("version", args[2]),
				slog.String("error", err.Error()))
			return err
		}
		fmt.Println(flags)
		return nil
	},
}

func init() {
	rootCmd.RunE = hostCmd.RunE
	rootCmd.AddCommand(hostCmd, listCmd, infoCmd, flagsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
