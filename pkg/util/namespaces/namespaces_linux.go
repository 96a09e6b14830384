// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package namespaces resolves OCI namespace declarations to kernel clone
// flags and wraps the unshare/setns calls used to create or join them.
package namespaces

import (
	"fmt"
	"os"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"
)

// cloneFlags maps each namespace type accepted in an OCI configuration
// to its kernel clone flag.
var cloneFlags = map[specs.LinuxNamespaceType]int{
	specs.MountNamespace:   unix.CLONE_NEWNS,
	specs.CgroupNamespace:  unix.CLONE_NEWCGROUP,
	specs.NetworkNamespace: unix.CLONE_NEWNET,
	specs.IPCNamespace:     unix.CLONE_NEWIPC,
	specs.PIDNamespace:     unix.CLONE_NEWPID,
	specs.UTSNamespace:     unix.CLONE_NEWUTS,
	specs.UserNamespace:    unix.CLONE_NEWUSER,
}

// nsFiles maps namespace types to their /proc/<pid>/ns entry names.
var nsFiles = map[specs.LinuxNamespaceType]string{
	specs.MountNamespace:   "mnt",
	specs.CgroupNamespace:  "cgroup",
	specs.NetworkNamespace: "net",
	specs.IPCNamespace:     "ipc",
	specs.PIDNamespace:     "pid",
	specs.UTSNamespace:     "uts",
	specs.UserNamespace:    "user",
}

// CloneFlag returns the clone flag corresponding to the namespace type.
func CloneFlag(t specs.LinuxNamespaceType) (int, error) {
	flag, ok := cloneFlags[t]
	if !ok {
		return 0, fmt.Errorf("invalid namespace type: %s", t)
	}
	return flag, nil
}

// CloneFlags combines the clone flags of every namespace in the list.
// Duplicate types are redundant but harmless since flags are OR-combined.
func CloneFlags(nsList []specs.LinuxNamespace) (int, error) {
	flags := 0
	for _, ns := range nsList {
		flag, err := CloneFlag(ns.Type)
		if err != nil {
			return 0, err
		}
		flags |= flag
	}
	return flags, nil
}

// Unshare moves the calling thread into new namespaces of every kind
// set in flags with a single kernel call. The caller must be pinned to
// its OS thread.
func Unshare(flags int) error {
	if err := unix.Unshare(flags); err != nil {
		return fmt.Errorf("failed to unshare namespaces: %s", err)
	}
	return nil
}

// Join makes the calling thread a member of the namespace pinned at
// path, which must be of the provided type.
func Join(path string, t specs.LinuxNamespaceType) error {
	flag, err := CloneFlag(t)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("can't open namespace path %s: %s", path, err)
	}
	defer f.Close()

	if err := unix.Setns(int(f.Fd()), flag); err != nil {
		return fmt.Errorf("failed to join namespace %s: %s", path, err)
	}
	return nil
}

// Enter joins the namespace of type t owned by the process pid.
func Enter(pid int, t specs.LinuxNamespaceType) error {
	file, ok := nsFiles[t]
	if !ok {
		return fmt.Errorf("invalid namespace type: %s", t)
	}
	return Join(fmt.Sprintf("/proc/%d/ns/%s", pid, file), t)
}
