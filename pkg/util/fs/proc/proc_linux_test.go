// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package proc

import (
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/vessel-systems/vessel/internal/pkg/test"
	"github.com/vessel-systems/vessel/pkg/util/namespaces"
)

func TestHasFilesystem(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	p, err := HasFilesystem("proc")
	if err != nil {
		t.Error(err)
	}
	if !p {
		t.Errorf("proc filesystem not present")
	}

	p, err = HasFilesystem("42fs")
	if err != nil {
		t.Error(err)
	}
	if p {
		t.Errorf("42fs should not be in supported filesystems")
	}
}

var mountInfoData = `22 28 0:21 / /sys rw,nosuid,nodev,noexec,relatime shared:7 - sysfs sysfs rw
23 28 0:4 / /proc rw,nosuid,nodev,noexec,relatime shared:13 - proc proc rw
24 28 0:6 / /dev rw,nosuid,relatime shared:2 - devtmpfs udev rw,size=8110616k,nr_inodes=2027654,mode=755
25 24 0:22 / /dev/pts rw,nosuid,noexec,relatime shared:3 - devpts devpts rw,gid=5,mode=620,ptmxmode=000
26 28 0:23 / /run rw,nosuid,noexec,relatime shared:5 - tmpfs tmpfs rw,size=1635872k,mode=755
28 0 8:1 / / rw,noatime,nodiratime shared:1 - ext4 /dev/sda1 rw,discard,errors=remount-ro,data=ordered
30 24 0:25 / /dev/shm rw,nosuid,nodev shared:4 - tmpfs tmpfs rw
48 24 0:19 / /dev/mqueue rw,relatime shared:26 - mqueue mqueue rw
579 28 0:65 / /tmp/squashfs rw,relatime - squashfs /dev/loop0 rw`

func TestGetMountInfo(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	_, err := GetMountInfoEntry("/bad/path")
	if err == nil {
		t.Fatalf("unexpected success while parsing bad path")
	}

	path := filepath.Join(t.TempDir(), "mountinfo")
	if err := os.WriteFile(path, []byte(mountInfoData), 0o600); err != nil {
		t.Fatal(err)
	}

	entries, err := GetMountInfoEntry(path)
	if err != nil {
		t.Fatalf("unexpected error while parsing %s: %s", path, err)
	}
	if len(entries) != 9 {
		t.Fatalf("got %d entries instead of 9", len(entries))
	}

	check := []MountInfoEntry{
		{
			ParentID:     "28",
			ID:           "22",
			Dev:          "0:21",
			Root:         "/",
			Point:        "/sys",
			Fields:       "shared:7",
			FSType:       "sysfs",
			Source:       "sysfs",
			SuperOptions: []string{"rw"},
			Options:      []string{"rw", "nosuid", "nodev", "noexec", "relatime"},
		},
		{
			ParentID:     "24",
			ID:           "30",
			Dev:          "0:25",
			Root:         "/",
			Point:        "/dev/shm",
			Fields:       "shared:4",
			FSType:       "tmpfs",
			Source:       "tmpfs",
			SuperOptions: []string{"rw"},
			Options:      []string{"rw", "nosuid", "nodev"},
		},
		{
			ParentID:     "28",
			ID:           "579",
			Dev:          "0:65",
			Root:         "/",
			Point:        "/tmp/squashfs",
			Fields:       "",
			FSType:       "squashfs",
			Source:       "/dev/loop0",
			SuperOptions: []string{"rw"},
			Options:      []string{"rw", "relatime"},
		},
	}

	for _, c := range check {
		for _, e := range entries {
			if c.Point != e.Point {
				continue
			}
			if e.ParentID != c.ParentID {
				t.Errorf("wrong parent ID %s instead of %s", e.ParentID, c.ParentID)
			}
			if e.ID != c.ID {
				t.Errorf("wrong ID: %s instead of %s", e.ID, c.ID)
			}
			if e.Dev != c.Dev {
				t.Errorf("wrong dev field: %s instead of %s", e.Dev, c.Dev)
			}
			if e.Root != c.Root {
				t.Errorf("wrong root field: %s instead of %s", e.Root, c.Root)
			}
			if e.Fields != c.Fields {
				t.Errorf("wrong fields: %s instead of %s", e.Fields, c.Fields)
			}
			if e.FSType != c.FSType {
				t.Errorf("wrong fstype: %s instead of %s", e.FSType, c.FSType)
			}
			if e.Source != c.Source {
				t.Errorf("wrong source: %s instead of %s", e.Source, c.Source)
			}
			if e.SuperOptions[0] != c.SuperOptions[0] {
				t.Errorf("wrong super options: %s instead of %s", e.SuperOptions[0], c.SuperOptions)
			}
			if e.Options[1] != c.Options[1] {
				t.Errorf("wrong options: %s instead of %s", e.Options[1], c.Options)
			}
		}
	}
}

func TestReadIDMap(t *testing.T) {
	test.DropPrivilege(t)
	defer test.ResetPrivilege(t)

	_, _, err := ReadIDMap("/proc/__/uid_map")
	if err == nil {
		t.Fatalf("unexpected success with bad uid_map path")
	}

	// skip tests if uid_map doesn't exists
	if _, err := os.Stat("/proc/self/uid_map"); os.IsNotExist(err) {
		return
	}

	if insideUserNs, _ := namespaces.IsInsideUserNamespace(os.Getpid()); !insideUserNs {
		for _, e := range []string{"/proc/self/uid_map", "/proc/self/gid_map"} {
			containerID, hostID, err := ReadIDMap(e)
			if err != nil {
				t.Fatal(err)
			}
			if containerID != 0 || containerID != hostID {
				t.Errorf("unexpected container/host ID")
			}
		}
	}

	for _, e := range []string{"a a a", "0 a a"} {
		path := filepath.Join(t.TempDir(), "uid_map")
		if err := os.WriteFile(path, []byte(e), 0o600); err != nil {
			t.Fatal(err)
		}

		_, _, err = ReadIDMap(path)
		if err == nil {
			t.Fatalf("unexpected success with bad formatted uid_map")
		}
	}
}

func TestHasNamespace(t *testing.T) {
	test.EnsurePrivilege(t)

	has, err := HasNamespace(0, "ipc")
	if err == nil && has {
		t.Error("unexpected success with PID 0")
	}

	ppid := os.Getppid()
	has, err = HasNamespace(ppid, "net")
	if err != nil {
		t.Error(err)
	}
	if has {
		t.Errorf("namespaces should be identical")
	}

	cmd := exec.Command("/bin/cat")
	pipe, err := cmd.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{}
	cmd.SysProcAttr.Cloneflags = syscall.CLONE_NEWPID

	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}

	has, err = HasNamespace(cmd.Process.Pid, "pid")
	if err != nil {
		t.Fatal(err)
	} else if !has {
		t.Errorf("pid namespace should be different")
	}

	pipe.Close()

	cmd.Wait()
}
