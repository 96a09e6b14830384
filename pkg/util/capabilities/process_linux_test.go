// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package capabilities

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"testing"
)

// statusCap reads a capability bitmask field from /proc/self/status.
func statusCap(t *testing.T, field string) uint64 {
	t.Helper()

	f, err := os.Open("/proc/self/status")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, field+":") {
			continue
		}
		v, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(line, field+":")), 16, 64)
		if err != nil {
			t.Fatalf("failed to parse %s: %s", field, err)
		}
		return v
	}
	t.Fatalf("no %s field in /proc/self/status", field)
	return 0
}

func TestGetProcess(t *testing.T) {
	effective, err := GetProcessEffective()
	if err != nil {
		t.Fatal(err)
	}
	if want := statusCap(t, "CapEff"); effective != want {
		t.Errorf("unexpected effective set: got %#x, want %#x", effective, want)
	}

	permitted, err := GetProcessPermitted()
	if err != nil {
		t.Fatal(err)
	}
	if want := statusCap(t, "CapPrm"); permitted != want {
		t.Errorf("unexpected permitted set: got %#x, want %#x", permitted, want)
	}

	inheritable, err := GetProcessInheritable()
	if err != nil {
		t.Fatal(err)
	}
	if want := statusCap(t, "CapInh"); inheritable != want {
		t.Errorf("unexpected inheritable set: got %#x, want %#x", inheritable, want)
	}
}

func TestReadBounding(t *testing.T) {
	bound := statusCap(t, "CapBnd")

	for i := uint(0); i <= LastCap(); i++ {
		set, err := ReadBounding(i)
		if err != nil {
			// capability unknown to the running kernel
			continue
		}
		if want := bound&(uint64(1)<<i) != 0; set != want {
			t.Errorf("unexpected bounding state for %s: got %v, want %v", Name(i), set, want)
		}
	}
}

func TestReadAmbient(t *testing.T) {
	ambient := statusCap(t, "CapAmb")

	for i := uint(0); i <= LastCap(); i++ {
		set, err := ReadAmbient(i)
		if err != nil {
			// capability unknown to the running kernel
			continue
		}
		if want := ambient&(uint64(1)<<i) != 0; set != want {
			t.Errorf("unexpected ambient state for %s: got %v, want %v", Name(i), set, want)
		}
	}
}

func TestSetProcessEffective(t *testing.T) {
	permitted, err := GetProcessPermitted()
	if err != nil {
		t.Fatal(err)
	}
	effective, err := GetProcessEffective()
	if err != nil {
		t.Fatal(err)
	}

	// applying the current effective set must always succeed
	old, err := SetProcessEffective(effective)
	if err != nil {
		t.Fatal(err)
	}
	if old != effective {
		t.Errorf("unexpected previous effective set: got %#x, want %#x", old, effective)
	}

	// raising a capability outside the permitted set must fail
	for i := uint(0); i <= LastCap(); i++ {
		if permitted&(uint64(1)<<i) == 0 {
			if _, err := SetProcessEffective(effective | uint64(1)<<i); err == nil {
				t.Errorf("unexpected success raising %s outside the permitted set", Name(i))
			}
			break
		}
	}
}
