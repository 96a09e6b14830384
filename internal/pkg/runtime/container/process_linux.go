// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package container

import (
	"fmt"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/sirupsen/logrus"
	"github.com/vessel-systems/vessel/pkg/util/capabilities"
	"github.com/vessel-systems/vessel/pkg/util/rlimit"
	"golang.org/x/sys/unix"
)

// capConfig carries the five capability sets parsed from the
// configuration as bitmasks.
type capConfig struct {
	effective   uint64
	permitted   uint64
	inheritable uint64
	ambient     uint64
	bounding    uint64
}

func parseCapabilities(pc *specs.LinuxCapabilities) (*capConfig, error) {
	caps := &capConfig{}
	if pc == nil {
		return caps, nil
	}
	var err error
	if caps.effective, err = capabilities.FromNames(pc.Effective); err != nil {
		return nil, err
	}
	if caps.permitted, err = capabilities.FromNames(pc.Permitted); err != nil {
		return nil, err
	}
	if caps.inheritable, err = capabilities.FromNames(pc.Inheritable); err != nil {
		return nil, err
	}
	if caps.ambient, err = capabilities.FromNames(pc.Ambient); err != nil {
		return nil, err
	}
	if caps.bounding, err = capabilities.FromNames(pc.Bounding); err != nil {
		return nil, err
	}
	return caps, nil
}

// ignorableCapError reports kernel responses tolerated while updating
// the ambient and bounding sets: older kernels reject ambient
// capabilities with EINVAL and an already restricted process answers
// EPERM, neither should abort privilege reduction.
func ignorableCapError(err error) bool {
	return err == unix.EINVAL || err == unix.EPERM
}

// SetCapabilities applies the configured capability sets: ambient
// capabilities are cleared and re-raised one by one, the bounding set
// is shrunk to the configured list, then the effective, permitted and
// inheritable sets are enforced with a single capset call. Requested
// but unsupported ambient/bounding updates are logged at debug level
// and skipped, a capset or no_new_privs failure is fatal.
func (c *Container) SetCapabilities() error {
	var pc *specs.LinuxCapabilities
	noNewPrivs := false
	if c.Spec.Process != nil {
		pc = c.Spec.Process.Capabilities
		noNewPrivs = c.Spec.Process.NoNewPrivileges
	}

	caps, err := parseCapabilities(pc)
	if err != nil {
		return err
	}

	if err := capabilities.ClearAmbient(); err != nil {
		if !ignorableCapError(err) {
			return fmt.Errorf("failed to clear ambient capabilities: %s", err)
		}
		logrus.Debugf("Ignoring ambient capability clear error: %s", err)
	}

	// a configuration without a capabilities block keeps the inherited
	// sets, only the ambient reset above applies
	if pc != nil {
		last := capabilities.LastCap()
		for cap := uint(0); cap <= last; cap++ {
			if caps.ambient&(1<<cap) == 0 {
				continue
			}
			if err := capabilities.RaiseAmbient(cap); err != nil {
				if !ignorableCapError(err) {
					return fmt.Errorf("failed to raise ambient capability %s: %s", capabilities.Name(cap), err)
				}
				logrus.Debugf("Ignoring ambient capability raise for %s: %s", capabilities.Name(cap), err)
			}
		}

		for cap := uint(0); cap <= last; cap++ {
			if caps.bounding&(1<<cap) != 0 {
				continue
			}
			if err := capabilities.DropBounding(cap); err != nil {
				if !ignorableCapError(err) {
					return fmt.Errorf("failed to drop bounding capability %s: %s", capabilities.Name(cap), err)
				}
				logrus.Debugf("Ignoring bounding capability drop for %s: %s", capabilities.Name(cap), err)
			}
		}

		logrus.Debugf("Setting process capabilities (effective 0x%x)", caps.effective)
		if err := capabilities.SetProcess(caps.effective, caps.permitted, caps.inheritable); err != nil {
			return fmt.Errorf("failed to set process capabilities: %s", err)
		}
	}

	if noNewPrivs {
		if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
			return fmt.Errorf("failed to set no new privileges: %s", err)
		}
	}
	return nil
}

// SetRlimits applies every configured resource limit to the calling
// process.
func (c *Container) SetRlimits() error {
	if c.Spec.Process == nil {
		return nil
	}
	for _, limit := range c.Spec.Process.Rlimits {
		logrus.Debugf("Setting %s to %d/%d", limit.Type, limit.Soft, limit.Hard)
		if err := rlimit.Set(limit.Type, limit.Soft, limit.Hard); err != nil {
			return err
		}
	}
	return nil
}
