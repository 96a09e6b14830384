// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

//go:build !linux

package namespaces

import "os"

// IsInsideUserNamespace checks whether the process pid already runs in
// a user namespace and whether it has permission to use setgroups in
// that namespace.
func IsInsideUserNamespace(pid int) (bool, bool) {
	return false, false
}

// HostUID returns the original host UID when the current process runs
// inside a user namespace, the current UID otherwise.
func HostUID() (int, error) {
	return os.Getuid(), nil
}

// HostGID returns the original host GID when the current process runs
// inside a user namespace, the current GID otherwise.
func HostGID() (int, error) {
	return os.Getgid(), nil
}
