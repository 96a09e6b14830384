// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mount

import (
	"testing"

	"github.com/vessel-systems/vessel/internal/pkg/test"
	"golang.org/x/sys/unix"
)

func TestSystem(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	points := &Points{}

	if err := points.AddBind("/etc/hosts", "/etc/hosts", unix.MS_REC); err != nil {
		t.Fatal(err)
	}
	if err := points.AddRemount("/etc/hosts", unix.MS_BIND|unix.MS_RDONLY); err != nil {
		t.Fatal(err)
	}

	system := &System{
		Points: points,
	}

	before := false
	after := false
	mounted := 0

	mountFn := func(point *Point, system *System) error {
		if !before {
			t.Errorf("mount function called before the registered before hook")
		}
		if after {
			t.Errorf("mount function called after the registered after hook")
		}
		mounted++
		return nil
	}
	beforeHook := func(system *System) error {
		before = true
		return nil
	}
	afterHook := func(system *System) error {
		after = true
		return nil
	}

	system.Mount = mountFn
	system.RunBeforeMount(beforeHook)
	system.RunAfterMount(afterHook)

	if err := system.MountAll(); err != nil {
		t.Error(err)
	}
	if before == false {
		t.Errorf("beforeHook wasn't executed")
	}
	if after == false {
		t.Errorf("afterHook wasn't executed")
	}
	if mounted != 2 {
		t.Errorf("mount function was executed %d times instead of 2", mounted)
	}
}

func TestSystemError(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	points := &Points{}

	if err := points.AddBind("/etc/hosts", "/etc/hosts", 0); err != nil {
		t.Fatal(err)
	}

	errFn := func(point *Point, system *System) error {
		return unix.EPERM
	}

	system := &System{
		Points: points,
		Mount:  errFn,
	}

	if err := system.MountAll(); err == nil {
		t.Errorf("MountAll should have reported the mount function failure")
	}
}
