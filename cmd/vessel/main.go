// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import "github.com/vessel-systems/vessel/cmd/vessel/cli"

func main() {
	cli.Execute()
}
