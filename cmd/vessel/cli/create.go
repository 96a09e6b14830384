// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vessel-systems/vessel/internal/pkg/runtime/engine"
)

var bundlePath string

func init() {
	CreateCmd.Flags().SetInterspersed(false)

	cwd, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("%s", err)
	}

	CreateCmd.Flags().StringVarP(&bundlePath, "bundle", "b", cwd, "path to the OCI bundle directory, defaults to the current directory")
	VesselCmd.AddCommand(CreateCmd)
}

// CreateCmd applies the container creation sequence of an OCI bundle
// to the current process.
var CreateCmd = &cobra.Command{
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := engine.New(args[0], bundlePath)
		if err != nil {
			logrus.Fatalf("%s", err)
		}
		if err := e.CreateContainer(); err != nil {
			logrus.Fatalf("%s", err)
		}
		logrus.Infof("Container %s created", args[0])
	},
	DisableFlagsInUseLine: true,

	Use:   "create -b bundle <container ID>",
	Short: "Create a container from an OCI bundle",
	Long: `create loads the bundle configuration and applies the isolation
sequence it describes to the current process: namespaces, container
filesystem, root switch and privilege reduction.`,
}
