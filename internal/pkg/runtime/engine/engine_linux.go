// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package engine drives the container creation sequence for an OCI
// bundle. The engine loads the bundle configuration, resolves the
// runtime context of the calling process and applies the isolation
// stages in order: namespaces, user namespace mappings, hostname,
// mounts, root switch, resource limits and capabilities.
package engine

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vessel-systems/vessel/internal/pkg/runtime/container"
	"github.com/vessel-systems/vessel/internal/pkg/runtime/engine/config/oci"
	"github.com/vessel-systems/vessel/internal/pkg/util/fs"
	"github.com/vessel-systems/vessel/pkg/util/namespaces"
	"golang.org/x/sys/unix"
)

// Engine wraps an OCI bundle and drives the container creation
// sequence for it.
type Engine struct {
	// ContainerID is the caller supplied identifier of the container.
	ContainerID string
	// Bundle is the absolute path of the bundle directory.
	Bundle string
	// Config is the runtime configuration loaded from the bundle.
	Config *oci.Config

	container *container.Container
}

// New loads the runtime configuration from the bundle directory and
// prepares an engine holding the runtime context of the calling
// process: the host identity is resolved through the user namespace
// mappings so it stays correct when the process already runs in a
// user namespace.
func New(id, bundlePath string) (*Engine, error) {
	bundlePath, err := filepath.Abs(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle path: %s", err)
	}

	cfg := &oci.Config{}
	if err := oci.LoadConfig(filepath.Join(bundlePath, oci.ConfigFile), cfg); err != nil {
		return nil, err
	}

	spec := &cfg.Spec
	if spec.Root == nil || spec.Root.Path == "" {
		return nil, fmt.Errorf("no root filesystem defined in %s", oci.ConfigFile)
	}

	rootfs := spec.Root.Path
	if !filepath.IsAbs(rootfs) {
		rootfs = filepath.Join(bundlePath, rootfs)
	}
	if !fs.IsDir(rootfs) {
		return nil, fmt.Errorf("root filesystem %s is not a directory", rootfs)
	}

	hostUID, err := namespaces.HostUID()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host UID: %s", err)
	}
	hostGID, err := namespaces.HostGID()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host GID: %s", err)
	}

	return &Engine{
		ContainerID: id,
		Bundle:      bundlePath,
		Config:      cfg,
		container: &container.Container{
			Spec:    spec,
			HostUID: hostUID,
			HostGID: hostGID,
			Rootfs:  rootfs,
		},
	}, nil
}

// CreateContainer applies the whole isolation sequence to the calling
// process. The goroutine is locked to its OS thread and the lock is
// never released: after the sequence the thread carries namespace and
// capability state that must not leak to other goroutines.
func (e *Engine) CreateContainer() error {
	runtime.LockOSThread()

	c := e.container

	logrus.Debugf("Creating container %s from bundle %s", e.ContainerID, e.Bundle)

	if err := c.SetNamespaces(); err != nil {
		return errors.Wrap(err, "namespace setup failed")
	}
	if c.CloneFlags&unix.CLONE_NEWUSER != 0 {
		if err := c.SetUserNamespace(); err != nil {
			return errors.Wrap(err, "user namespace setup failed")
		}
	}
	if err := c.SetHostname(); err != nil {
		return errors.Wrap(err, "hostname setup failed")
	}
	if err := c.SetMounts(); err != nil {
		return errors.Wrap(err, "mount setup failed")
	}
	if err := c.PivotRoot(); err != nil {
		return errors.Wrap(err, "root filesystem switch failed")
	}
	if err := c.SetRlimits(); err != nil {
		return errors.Wrap(err, "resource limit setup failed")
	}
	if err := c.SetCapabilities(); err != nil {
		return errors.Wrap(err, "capability setup failed")
	}

	logrus.Debugf("Container %s created", e.ContainerID)

	return nil
}
