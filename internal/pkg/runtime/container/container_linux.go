// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package container implements the isolation sequence applied to a
// container process between fork and exec: namespace creation and
// joining, filesystem assembly, the switch to the container root,
// user namespace identity mapping and privilege reduction.
//
// Methods mutate kernel state of the calling process and must run on
// a locked OS thread, in the order driven by the runtime engine. The
// configuration is read-only and shared by all steps, a failed step
// aborts the whole container start.
package container

import (
	"fmt"
	"os"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/sirupsen/logrus"
	"github.com/vessel-systems/vessel/pkg/util/namespaces"
	"golang.org/x/sys/unix"
)

// Container holds the configuration and runtime context needed to
// isolate a container process.
type Container struct {
	// Spec is the OCI runtime specification of the container.
	Spec *specs.Spec
	// HostUID and HostGID carry the invoking user host identity.
	HostUID int
	HostGID int
	// Rootfs is the resolved absolute path where the container root
	// filesystem is assembled.
	Rootfs string
	// CloneFlags is the combination of namespace creation flags
	// computed by SetNamespaces.
	CloneFlags int
}

// SetNamespaces resolves the configured namespace list, creates all
// requested namespaces with a single unshare call and joins the ones
// pointing to an existing namespace path. The combined creation flags
// are recorded in CloneFlags for later inspection.
func (c *Container) SetNamespaces() error {
	if c.Spec.Linux == nil || len(c.Spec.Linux.Namespaces) == 0 {
		return nil
	}
	nsList := c.Spec.Linux.Namespaces

	flags, err := namespaces.CloneFlags(nsList)
	if err != nil {
		return err
	}
	logrus.Debugf("Unsharing namespaces with flags 0x%x", flags)
	if err := namespaces.Unshare(flags); err != nil {
		return err
	}
	for _, ns := range nsList {
		if ns.Path == "" {
			continue
		}
		logrus.Debugf("Joining %s namespace at %s", ns.Type, ns.Path)
		if err := namespaces.Join(ns.Path, ns.Type); err != nil {
			return err
		}
	}
	c.CloneFlags = flags
	return nil
}

// SetHostname applies the configured hostname. A hostname can only be
// set once SetNamespaces created a UTS namespace, changing the host
// hostname from here would be a plain configuration mistake.
func (c *Container) SetHostname() error {
	if c.Spec.Hostname == "" {
		return nil
	}
	if c.CloneFlags&unix.CLONE_NEWUTS == 0 {
		return fmt.Errorf("hostname %s requires a UTS namespace", c.Spec.Hostname)
	}
	logrus.Debugf("Setting hostname to %s", c.Spec.Hostname)
	if err := unix.Sethostname([]byte(c.Spec.Hostname)); err != nil {
		return fmt.Errorf("failed to set hostname %s: %s", c.Spec.Hostname, err)
	}
	return nil
}

// idMaps returns the single line uid and gid maps written for the
// container user namespace. Host root gets a full range passthrough,
// any other user is mapped alone onto container root.
func idMaps(hostUID int, hostGID int) (uidMap string, gidMap string) {
	if hostUID == 0 {
		return "0 0 65536", "0 0 65536"
	}
	return fmt.Sprintf("0 %d 1", hostUID), fmt.Sprintf("0 %d 1", hostGID)
}

// SetUserNamespace writes the uid/gid maps of the freshly created
// user namespace. The kernel rejects the gid map of an unprivileged
// process unless setgroups was denied first, so writes are ordered
// setgroups, gid_map, uid_map.
func (c *Container) SetUserNamespace() error {
	uidMap, gidMap := idMaps(c.HostUID, c.HostGID)

	if err := os.WriteFile("/proc/self/setgroups", []byte("deny"), 0); err != nil {
		return fmt.Errorf("failed to write to /proc/self/setgroups: %s", err)
	}
	logrus.Debugf("Writing gid map: %s", gidMap)
	if err := os.WriteFile("/proc/self/gid_map", []byte(gidMap), 0); err != nil {
		return fmt.Errorf("failed to write to /proc/self/gid_map: %s", err)
	}
	logrus.Debugf("Writing uid map: %s", uidMap)
	if err := os.WriteFile("/proc/self/uid_map", []byte(uidMap), 0); err != nil {
		return fmt.Errorf("failed to write to /proc/self/uid_map: %s", err)
	}
	return nil
}
