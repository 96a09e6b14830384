// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package cli implements the vessel command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	debug bool
	quiet bool
)

func init() {
	VesselCmd.Flags().SetInterspersed(false)

	VesselCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Print debugging information")
	VesselCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")

	VersionCmd.Flags().SetInterspersed(false)
	VesselCmd.AddCommand(VersionCmd)
}

func setLogLevel() {
	switch {
	case debug:
		logrus.SetLevel(logrus.DebugLevel)
	case quiet:
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// VesselCmd is the base command when called without any subcommands.
var VesselCmd = &cobra.Command{
	TraverseChildren:      true,
	DisableFlagsInUseLine: true,
	Run:                   nil,

	Use:     "vessel",
	Version: version,
	Short:   "Set up Linux containers from OCI bundles",
	Long: `vessel prepares Linux containers from OCI runtime bundles: it creates
the requested namespaces, assembles the container filesystem, switches
the root with pivot_root and reduces the process privileges according
to the bundle configuration.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the root command.
func Execute() {
	if err := VesselCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// VersionCmd displays the installed vessel version.
var VersionCmd = &cobra.Command{
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},

	Use:   "version",
	Short: "Show application version",
}
