// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package capabilities

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// getProcessCapabilities returns the effective, permitted and
// inheritable sets of the current thread as two 32-bit words each.
func getProcessCapabilities() ([2]unix.CapUserData, error) {
	var data [2]unix.CapUserData
	var header unix.CapUserHeader

	header.Version = unix.LINUX_CAPABILITY_VERSION_3

	if err := unix.Capget(&header, &data[0]); err != nil {
		return data, fmt.Errorf("while getting capability: %s", err)
	}

	return data, nil
}

// GetProcessEffective returns effective capabilities for
// the current process.
func GetProcessEffective() (uint64, error) {
	data, err := getProcessCapabilities()
	if err != nil {
		return 0, err
	}
	return uint64(data[0].Effective) | uint64(data[1].Effective)<<32, nil
}

// GetProcessPermitted returns permitted capabilities for
// the current process.
func GetProcessPermitted() (uint64, error) {
	data, err := getProcessCapabilities()
	if err != nil {
		return 0, err
	}
	return uint64(data[0].Permitted) | uint64(data[1].Permitted)<<32, nil
}

// GetProcessInheritable returns inheritable capabilities for
// the current process.
func GetProcessInheritable() (uint64, error) {
	data, err := getProcessCapabilities()
	if err != nil {
		return 0, err
	}
	return uint64(data[0].Inheritable) | uint64(data[1].Inheritable)<<32, nil
}

// SetProcess applies the effective, permitted and inheritable sets to
// the current thread with a single capset call.
func SetProcess(effective, permitted, inheritable uint64) error {
	var data [2]unix.CapUserData
	var header unix.CapUserHeader

	header.Version = unix.LINUX_CAPABILITY_VERSION_3

	data[0].Effective = uint32(effective)
	data[1].Effective = uint32(effective >> 32)
	data[0].Permitted = uint32(permitted)
	data[1].Permitted = uint32(permitted >> 32)
	data[0].Inheritable = uint32(inheritable)
	data[1].Inheritable = uint32(inheritable >> 32)

	if err := unix.Capset(&header, &data[0]); err != nil {
		return fmt.Errorf("while setting capabilities: %s", err)
	}

	return nil
}

// SetProcessEffective sets the effective capability set of the current
// thread and returns the previous one. The requested set must be a
// subset of the permitted set.
func SetProcessEffective(caps uint64) (uint64, error) {
	data, err := getProcessCapabilities()
	if err != nil {
		return 0, err
	}

	oldEffective := uint64(data[0].Effective) | uint64(data[1].Effective)<<32
	permitted := uint64(data[0].Permitted) | uint64(data[1].Permitted)<<32
	inheritable := uint64(data[0].Inheritable) | uint64(data[1].Inheritable)<<32

	for i := uint(0); i <= LastCap(); i++ {
		if caps&(uint64(1)<<i) == 0 || permitted&(uint64(1)<<i) != 0 {
			continue
		}
		strCap := Name(i)
		if strCap == "" {
			strCap = "UNKNOWN"
		}
		return 0, fmt.Errorf("while setting effective capabilities: %s is not in the permitted capability set", strCap)
	}

	if err := SetProcess(caps, permitted, inheritable); err != nil {
		return 0, fmt.Errorf("while setting effective capabilities: %s", err)
	}

	return oldEffective, nil
}

// ClearAmbient clears all ambient capabilities of the current thread.
func ClearAmbient() error {
	return unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_CLEAR_ALL, 0, 0, 0)
}

// RaiseAmbient raises the ambient capability value for the current
// thread. The capability must already be both permitted and
// inheritable.
func RaiseAmbient(value uint) error {
	return unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_RAISE, uintptr(value), 0, 0)
}

// ReadAmbient reports whether the capability value is present in the
// ambient set of the current thread.
func ReadAmbient(value uint) (bool, error) {
	r, err := unix.PrctlRetInt(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_IS_SET, uintptr(value), 0, 0)
	if err != nil {
		return false, fmt.Errorf("while reading ambient set: %s", err)
	}
	return r == 1, nil
}

// DropBounding removes the capability value from the bounding set of
// the current thread.
func DropBounding(value uint) error {
	return unix.Prctl(unix.PR_CAPBSET_DROP, uintptr(value), 0, 0, 0)
}

// ReadBounding reports whether the capability value is present in the
// bounding set of the current thread.
func ReadBounding(value uint) (bool, error) {
	r, err := unix.PrctlRetInt(unix.PR_CAPBSET_READ, uintptr(value), 0, 0, 0)
	if err != nil {
		return false, fmt.Errorf("while reading bounding set: %s", err)
	}
	return r == 1, nil
}
