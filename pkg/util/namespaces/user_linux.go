// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package namespaces

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IsInsideUserNamespace checks whether the process pid already runs in
// a user namespace and whether it has permission to use setgroups in
// that namespace.
func IsInsideUserNamespace(pid int) (bool, bool) {
	insideUserNs := false
	setgroupsAllowed := false

	// can fail if the kernel doesn't support user namespaces
	r, err := os.Open(fmt.Sprintf("/proc/%d/uid_map", pid))
	if err != nil {
		return insideUserNs, setgroupsAllowed
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	// the size field of the first line is enough to decide
	if scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		// trust values returned by procfs
		size, _ := strconv.ParseUint(fields[2], 10, 32)

		// a size of 4294967295 means the process is running
		// in the host user namespace
		if uint32(size) == ^uint32(0) {
			return insideUserNs, setgroupsAllowed
		}

		insideUserNs = true

		// should not fail if the open call passed
		d, err := os.ReadFile(fmt.Sprintf("/proc/%d/setgroups", pid))
		if err != nil {
			return insideUserNs, setgroupsAllowed
		}
		setgroupsAllowed = string(d) == "allow\n"
	}

	return insideUserNs, setgroupsAllowed
}

// hostID walks the id map file and returns the host ID backing
// currentID when a 1:1 mapping exists, currentID otherwise.
func hostID(mapPath string, currentID int) (int, error) {
	f, err := os.Open(mapPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to read %s: %s", mapPath, err)
		}
		// user namespace not supported
		return currentID, nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("failed to convert size field %s: %s", fields[2], err)
		}
		// not in a user namespace, use the current ID
		if uint32(size) == ^uint32(0) {
			break
		}

		containerID, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("failed to convert container ID field %s: %s", fields[0], err)
		}
		// look for a 1:1 mapping matching the current ID
		if size == 1 && uint32(currentID) == uint32(containerID) {
			id, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return 0, fmt.Errorf("failed to convert host ID field %s: %s", fields[1], err)
			}
			return int(id), nil
		}
	}

	return currentID, nil
}

// HostUID returns the original host UID when the current process runs
// inside a user namespace, the current UID otherwise.
func HostUID() (int, error) {
	return hostID("/proc/self/uid_map", os.Getuid())
}

// HostGID returns the original host GID when the current process runs
// inside a user namespace, the current GID otherwise.
func HostGID() (int, error) {
	return hostID("/proc/self/gid_map", os.Getgid())
}
