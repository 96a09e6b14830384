// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package rlimit applies process resource limits declared by their
// symbolic OCI names.
package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var resource = map[string]int{
	"RLIMIT_CPU":        unix.RLIMIT_CPU,
	"RLIMIT_FSIZE":      unix.RLIMIT_FSIZE,
	"RLIMIT_DATA":       unix.RLIMIT_DATA,
	"RLIMIT_STACK":      unix.RLIMIT_STACK,
	"RLIMIT_CORE":       unix.RLIMIT_CORE,
	"RLIMIT_RSS":        unix.RLIMIT_RSS,
	"RLIMIT_NPROC":      unix.RLIMIT_NPROC,
	"RLIMIT_NOFILE":     unix.RLIMIT_NOFILE,
	"RLIMIT_MEMLOCK":    unix.RLIMIT_MEMLOCK,
	"RLIMIT_AS":         unix.RLIMIT_AS,
	"RLIMIT_LOCKS":      unix.RLIMIT_LOCKS,
	"RLIMIT_SIGPENDING": unix.RLIMIT_SIGPENDING,
	"RLIMIT_MSGQUEUE":   unix.RLIMIT_MSGQUEUE,
	"RLIMIT_NICE":       unix.RLIMIT_NICE,
	"RLIMIT_RTPRIO":     unix.RLIMIT_RTPRIO,
	"RLIMIT_RTTIME":     unix.RLIMIT_RTTIME,
}

// Set sets soft and hard resource limit
func Set(res string, cur uint64, max uint64) error {
	var rlim unix.Rlimit

	resVal, ok := resource[res]
	if !ok {
		return fmt.Errorf("%s is not a valid resource type", res)
	}

	rlim.Cur = cur
	rlim.Max = max

	if err := unix.Setrlimit(resVal, &rlim); err != nil {
		return fmt.Errorf("failed to set resource limit %s: %s", res, err)
	}

	return nil
}

// Get retrieves soft and hard resource limit
func Get(res string) (cur uint64, max uint64, err error) {
	var rlim unix.Rlimit

	resVal, ok := resource[res]
	if !ok {
		err = fmt.Errorf("%s is not a valid resource type", res)
		return
	}

	if err = unix.Getrlimit(resVal, &rlim); err != nil {
		err = fmt.Errorf("failed to get resource limit %s: %s", res, err)
		return
	}

	cur = rlim.Cur
	max = rlim.Max

	return
}
