// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package namespaces

import (
	"os/exec"
	"strings"
	"syscall"
	"testing"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"

	"github.com/vessel-systems/vessel/internal/pkg/test"
)

func TestCloneFlags(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	tests := []struct {
		name       string
		namespaces []specs.LinuxNamespace
		flags      int
		shallPass  bool
	}{
		{
			name:       "empty list",
			namespaces: []specs.LinuxNamespace{},
			flags:      0,
			shallPass:  true,
		},
		{
			name: "single namespace",
			namespaces: []specs.LinuxNamespace{
				{Type: specs.PIDNamespace},
			},
			flags:     unix.CLONE_NEWPID,
			shallPass: true,
		},
		{
			name: "all namespaces",
			namespaces: []specs.LinuxNamespace{
				{Type: specs.MountNamespace},
				{Type: specs.CgroupNamespace},
				{Type: specs.NetworkNamespace},
				{Type: specs.IPCNamespace},
				{Type: specs.PIDNamespace},
				{Type: specs.UTSNamespace},
				{Type: specs.UserNamespace},
			},
			flags: unix.CLONE_NEWNS | unix.CLONE_NEWCGROUP | unix.CLONE_NEWNET |
				unix.CLONE_NEWIPC | unix.CLONE_NEWPID | unix.CLONE_NEWUTS |
				unix.CLONE_NEWUSER,
			shallPass: true,
		},
		{
			name: "duplicate types",
			namespaces: []specs.LinuxNamespace{
				{Type: specs.UTSNamespace},
				{Type: specs.UTSNamespace},
			},
			flags:     unix.CLONE_NEWUTS,
			shallPass: true,
		},
		{
			name: "unknown type",
			namespaces: []specs.LinuxNamespace{
				{Type: specs.PIDNamespace},
				{Type: specs.LinuxNamespaceType("time")},
			},
			shallPass: false,
		},
	}

	for _, tt := range tests {
		flags, err := CloneFlags(tt.namespaces)
		if tt.shallPass {
			if err != nil {
				t.Errorf("unexpected error for %q: %s", tt.name, err)
			} else if flags != tt.flags {
				t.Errorf("unexpected flags for %q: got %#x, want %#x", tt.name, flags, tt.flags)
			}
		} else {
			if err == nil {
				t.Errorf("unexpected success for %q", tt.name)
			} else if !strings.Contains(err.Error(), "time") {
				t.Errorf("error for %q doesn't name the bad type: %s", tt.name, err)
			}
		}
	}
}

func TestCloneFlag(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	expected := map[specs.LinuxNamespaceType]int{
		specs.MountNamespace:   unix.CLONE_NEWNS,
		specs.CgroupNamespace:  unix.CLONE_NEWCGROUP,
		specs.NetworkNamespace: unix.CLONE_NEWNET,
		specs.IPCNamespace:     unix.CLONE_NEWIPC,
		specs.PIDNamespace:     unix.CLONE_NEWPID,
		specs.UTSNamespace:     unix.CLONE_NEWUTS,
		specs.UserNamespace:    unix.CLONE_NEWUSER,
	}
	for nstype, want := range expected {
		got, err := CloneFlag(nstype)
		if err != nil {
			t.Errorf("unexpected error for %s: %s", nstype, err)
		}
		if got != want {
			t.Errorf("unexpected flag for %s: got %#x, want %#x", nstype, got, want)
		}
	}

	if _, err := CloneFlag(specs.LinuxNamespaceType("mnt")); err == nil {
		t.Errorf("unexpected success with alias type mnt")
	}
}

func TestEnter(t *testing.T) {
	test.EnsurePrivilege(t)

	cmd := exec.Command("/bin/cat")
	cmd.SysProcAttr = &syscall.SysProcAttr{}
	cmd.SysProcAttr.Cloneflags = syscall.CLONE_NEWIPC | syscall.CLONE_NEWNET

	pipe, err := cmd.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}

	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}

	if err := Enter(cmd.Process.Pid, specs.IPCNamespace); err != nil {
		t.Error(err)
	}
	if err := Enter(cmd.Process.Pid, specs.NetworkNamespace); err != nil {
		t.Error(err)
	}

	pipe.Close()

	if err := cmd.Wait(); err != nil {
		t.Error(err)
	}

	if err := Enter(0, specs.NetworkNamespace); err == nil {
		t.Errorf("should have failed with bad process")
	}
	if err := Enter(cmd.Process.Pid, specs.LinuxNamespaceType("bogus")); err == nil {
		t.Error("should have failed with unsupported namespace")
	}
}
