// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

//go:build !linux

package rlimit

import (
	"fmt"
)

// Set sets soft and hard resource limit
func Set(res string, cur uint64, max uint64) error {
	return fmt.Errorf("not supported on this platform")
}

// Get retrieves soft and hard resource limit
func Get(res string) (cur uint64, max uint64, err error) {
	return 0, 0, fmt.Errorf("not supported on this platform")
}
