// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package container

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/sirupsen/logrus"
	"github.com/vessel-systems/vessel/internal/pkg/util/fs"
	"github.com/vessel-systems/vessel/internal/pkg/util/fs/mount"
	"github.com/vessel-systems/vessel/pkg/util/fs/proc"
	"golang.org/x/sys/unix"
)

// SetMounts assembles the container filesystem tree: it isolates the
// host root propagation, turns the resolved root filesystem into a
// mount point and mounts every declared mount in listed order.
func (c *Container) SetMounts() error {
	points := &mount.Points{}
	system := &mount.System{Points: points, Mount: c.mountPoint}

	system.RunBeforeMount(c.mountRootfs)

	if err := c.addMountPoints(points); err != nil {
		return err
	}
	return system.MountAll()
}

// mountRootfs makes the host root propagation recursive slave (or the
// configured propagation) so container mount events cannot leak back
// to the host, then binds the resolved root filesystem onto itself
// with the same propagation.
func (c *Container) mountRootfs(_ *mount.System) error {
	if c.Spec.Root == nil || c.Spec.Root.Path == "" {
		return fmt.Errorf("no root filesystem found in configuration")
	}

	flags := uintptr(unix.MS_SLAVE | unix.MS_REC)
	if c.Spec.Linux != nil && c.Spec.Linux.RootfsPropagation != "" {
		propagation := c.Spec.Linux.RootfsPropagation
		flags, _ = mount.ConvertOptions([]string{propagation})
		if !mount.HasPropagationFlag(flags) {
			return fmt.Errorf("invalid rootfs propagation: %s", propagation)
		}
		// a plain keyword would only cover the root mount itself, the
		// propagation change must reach every submount
		flags |= unix.MS_REC
	}

	logrus.Debugf("Changing host root propagation")
	if err := unix.Mount("", "/", "", flags, ""); err != nil {
		return fmt.Errorf("failed to change host root propagation: %s", err)
	}

	// binding the resolved rootfs onto itself turns it into a mount
	// point pivot_root can operate on
	logrus.Debugf("Binding container root filesystem at %s", c.Rootfs)
	if err := unix.Mount(c.Rootfs, c.Rootfs, "", unix.MS_BIND|unix.MS_REC|flags, ""); err != nil {
		return fmt.Errorf("failed to mount container root filesystem %s: %s", c.Rootfs, err)
	}
	return nil
}

// addMountPoints translates the declared mounts into mount points.
// Entries without options get destination specific defaults, a bind
// type always carries the bind flag and the read-only bit is never
// part of the initial mount call: applying it needs a remount once
// the filesystem is attached, registered right behind the mount so
// nesting under a read-only parent keeps failing the same way for
// every point ordering. Cgroup points register no remount, they are
// never mounted.
func (c *Container) addMountPoints(points *mount.Points) error {
	for _, m := range c.Spec.Mounts {
		var flags uintptr
		var data string
		if len(m.Options) == 0 {
			flags, data = mount.DefaultFlags(m.Destination, c.HostUID)
		} else {
			var opts []string
			flags, opts = mount.ConvertOptions(m.Options)
			data = strings.Join(opts, ",")
		}
		if m.Type == "bind" {
			flags |= unix.MS_BIND
		}
		readonly := flags&unix.MS_RDONLY != 0
		flags &^= unix.MS_RDONLY

		source := m.Source
		if source == "" {
			source = m.Type
		}

		if err := points.Add(source, m.Destination, m.Type, flags, data); err != nil {
			return fmt.Errorf("while adding %s mount point: %s", m.Destination, err)
		}
		if readonly && m.Type != "cgroup" {
			if err := points.AddRemount(m.Destination, flags|unix.MS_BIND|unix.MS_RDONLY); err != nil {
				return fmt.Errorf("while adding %s read-only remount: %s", m.Destination, err)
			}
		}
	}
	return nil
}

// mountPoint mounts a single point inside the container root. The
// destination is resolved with symlinks confined to the rootfs and
// created with mode 0755 when absent, as a file when a regular file
// is bound. Cgroup points only get their directory, the mount itself
// is skipped. Kernel filesystem mounts are checked against
// /proc/filesystems before the mount call.
func (c *Container) mountPoint(point *mount.Point, _ *mount.System) error {
	target, err := securejoin.SecureJoin(c.Rootfs, point.Destination)
	if err != nil {
		return fmt.Errorf("failed to resolve %s inside %s: %s", point.Destination, c.Rootfs, err)
	}

	if mount.HasRemountFlag(point.Flags) {
		logrus.Debugf("Remounting %s", target)
		if err := unix.Mount("", target, "", point.Flags, ""); err != nil {
			return fmt.Errorf("failed to remount %s: %s", point.Destination, err)
		}
		return nil
	}

	if point.Type == "cgroup" {
		if err := fs.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create mount point %s: %s", target, err)
		}
		logrus.Warnf("Skipping %s mount: cgroup filesystem setup is left to the cgroup manager", point.Destination)
		return nil
	}

	if point.Flags&unix.MS_BIND == 0 && point.Type != "" {
		if has, err := proc.HasFilesystem(point.Type); err == nil && !has {
			return fmt.Errorf("%s filesystem not supported by the kernel", point.Type)
		}
	}

	if point.Flags&unix.MS_BIND != 0 && fs.IsFile(point.Source) {
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create mount point parent %s: %s", target, err)
		}
		if err := fs.Touch(target); err != nil {
			return fmt.Errorf("failed to create mount point %s: %s", target, err)
		}
	} else if err := fs.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create mount point %s: %s", target, err)
	}

	logrus.Debugf("Mounting %s to %s (%s)", point.Source, target, point.Type)
	if err := unix.Mount(point.Source, target, point.Type, point.Flags, point.Data); err != nil {
		return fmt.Errorf("can't mount %s filesystem to %s: %s", point.Type, point.Destination, err)
	}
	return nil
}

// PivotRoot switches the process root to the prepared rootfs and
// detaches the old root. Old and new root are pinned with directory
// descriptors so pivot_root can be called with both paths given as
// ".", without any temporary directory under the new root.
func (c *Container) PivotRoot() error {
	oldroot, err := os.Open("/")
	if err != nil {
		return fmt.Errorf("failed to open host root directory: %s", err)
	}
	defer oldroot.Close()

	newroot, err := os.Open(c.Rootfs)
	if err != nil {
		return fmt.Errorf("failed to open container root directory: %s", err)
	}
	defer newroot.Close()

	if err := unix.Fchdir(int(newroot.Fd())); err != nil {
		return fmt.Errorf("failed to change directory to container root: %s", err)
	}

	logrus.Debugf("Calling pivot_root on %s", c.Rootfs)
	if err := unix.PivotRoot(".", "."); err != nil {
		return fmt.Errorf("pivot_root %s: %s", c.Rootfs, err)
	}

	if err := unix.Fchdir(int(oldroot.Fd())); err != nil {
		return fmt.Errorf("failed to change directory to old root: %s", err)
	}

	// the detach must not propagate to mount namespaces still sharing
	// the old root
	logrus.Debugf("Applying private mount propagation to old root")
	if err := unix.Mount("", ".", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("failed to apply private mount propagation to old root: %s", err)
	}

	logrus.Debugf("Detaching old root")
	if err := unix.Unmount(".", unix.MNT_DETACH); err != nil {
		return fmt.Errorf("failed to unmount old root: %s", err)
	}

	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("failed to change directory to new root: %s", err)
	}
	return nil
}
