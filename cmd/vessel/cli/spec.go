// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vessel-systems/vessel/internal/pkg/runtime/engine/config/oci"
	"github.com/vessel-systems/vessel/internal/pkg/util/fs"
)

var rootless bool

func init() {
	SpecCmd.Flags().SetInterspersed(false)

	cwd, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("%s", err)
	}

	SpecCmd.Flags().StringVarP(&bundlePath, "bundle", "b", cwd, "path of the bundle directory to write the configuration into")
	SpecCmd.Flags().BoolVar(&rootless, "rootless", false, "generate a configuration for an unprivileged user")
	VesselCmd.AddCommand(SpecCmd)
}

// SpecCmd writes a default runtime configuration file into the bundle
// directory.
var SpecCmd = &cobra.Command{
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		g, err := oci.DefaultConfig()
		if rootless {
			g, err = oci.DefaultRootlessConfig()
		}
		if err != nil {
			logrus.Fatalf("%s", err)
		}

		path := filepath.Join(bundlePath, oci.ConfigFile)
		if fs.IsFile(path) {
			logrus.Fatalf("%s already exists", path)
		}
		if err := oci.SaveConfig(path, g); err != nil {
			logrus.Fatalf("%s", err)
		}
	},
	DisableFlagsInUseLine: true,

	Use:   "spec",
	Short: "Generate a default OCI runtime configuration",
	Long: `spec writes a config.json with vessel defaults into the bundle
directory, ready to be adjusted and used with vessel create.`,
}
