// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

//go:build !linux

package capabilities

import (
	"fmt"
	"runtime"
)

// ErrCapNotSupported is returned by every process operation of this
// package on platforms without Linux capabilities.
var ErrCapNotSupported = fmt.Errorf("capabilities not supported on this OS: %s", runtime.GOOS)

// GetProcessEffective returns effective capabilities for
// the current process.
func GetProcessEffective() (uint64, error) {
	return 0, ErrCapNotSupported
}

// GetProcessPermitted returns permitted capabilities for
// the current process.
func GetProcessPermitted() (uint64, error) {
	return 0, ErrCapNotSupported
}

// GetProcessInheritable returns inheritable capabilities for
// the current process.
func GetProcessInheritable() (uint64, error) {
	return 0, ErrCapNotSupported
}

// SetProcess applies the effective, permitted and inheritable sets to
// the current thread.
func SetProcess(effective, permitted, inheritable uint64) error {
	return ErrCapNotSupported
}

// SetProcessEffective sets the effective capability set of the current
// thread and returns the previous one.
func SetProcessEffective(caps uint64) (uint64, error) {
	return 0, ErrCapNotSupported
}

// ClearAmbient clears all ambient capabilities of the current thread.
func ClearAmbient() error {
	return ErrCapNotSupported
}

// RaiseAmbient raises the ambient capability value for the current
// thread.
func RaiseAmbient(value uint) error {
	return ErrCapNotSupported
}

// ReadAmbient reports whether the capability value is present in the
// ambient set of the current thread.
func ReadAmbient(value uint) (bool, error) {
	return false, ErrCapNotSupported
}

// DropBounding removes the capability value from the bounding set of
// the current thread.
func DropBounding(value uint) error {
	return ErrCapNotSupported
}

// ReadBounding reports whether the capability value is present in the
// bounding set of the current thread.
func ReadBounding(value uint) (bool, error) {
	return false, ErrCapNotSupported
}
