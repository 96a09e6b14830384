// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package capabilities maps Linux capability names to their kernel
// values and applies capability sets to the current process.
package capabilities

import (
	"fmt"
	"strings"
)

type capability struct {
	Name  string
	Value uint
}

// Map maps each capability name to its kernel value.
var Map = map[string]*capability{
	"CAP_CHOWN":              {Name: "CAP_CHOWN", Value: 0},
	"CAP_DAC_OVERRIDE":       {Name: "CAP_DAC_OVERRIDE", Value: 1},
	"CAP_DAC_READ_SEARCH":    {Name: "CAP_DAC_READ_SEARCH", Value: 2},
	"CAP_FOWNER":             {Name: "CAP_FOWNER", Value: 3},
	"CAP_FSETID":             {Name: "CAP_FSETID", Value: 4},
	"CAP_KILL":               {Name: "CAP_KILL", Value: 5},
	"CAP_SETGID":             {Name: "CAP_SETGID", Value: 6},
	"CAP_SETUID":             {Name: "CAP_SETUID", Value: 7},
	"CAP_SETPCAP":            {Name: "CAP_SETPCAP", Value: 8},
	"CAP_LINUX_IMMUTABLE":    {Name: "CAP_LINUX_IMMUTABLE", Value: 9},
	"CAP_NET_BIND_SERVICE":   {Name: "CAP_NET_BIND_SERVICE", Value: 10},
	"CAP_NET_BROADCAST":      {Name: "CAP_NET_BROADCAST", Value: 11},
	"CAP_NET_ADMIN":          {Name: "CAP_NET_ADMIN", Value: 12},
	"CAP_NET_RAW":            {Name: "CAP_NET_RAW", Value: 13},
	"CAP_IPC_LOCK":           {Name: "CAP_IPC_LOCK", Value: 14},
	"CAP_IPC_OWNER":          {Name: "CAP_IPC_OWNER", Value: 15},
	"CAP_SYS_MODULE":         {Name: "CAP_SYS_MODULE", Value: 16},
	"CAP_SYS_RAWIO":          {Name: "CAP_SYS_RAWIO", Value: 17},
	"CAP_SYS_CHROOT":         {Name: "CAP_SYS_CHROOT", Value: 18},
	"CAP_SYS_PTRACE":         {Name: "CAP_SYS_PTRACE", Value: 19},
	"CAP_SYS_PACCT":          {Name: "CAP_SYS_PACCT", Value: 20},
	"CAP_SYS_ADMIN":          {Name: "CAP_SYS_ADMIN", Value: 21},
	"CAP_SYS_BOOT":           {Name: "CAP_SYS_BOOT", Value: 22},
	"CAP_SYS_NICE":           {Name: "CAP_SYS_NICE", Value: 23},
	"CAP_SYS_RESOURCE":       {Name: "CAP_SYS_RESOURCE", Value: 24},
	"CAP_SYS_TIME":           {Name: "CAP_SYS_TIME", Value: 25},
	"CAP_SYS_TTY_CONFIG":     {Name: "CAP_SYS_TTY_CONFIG", Value: 26},
	"CAP_MKNOD":              {Name: "CAP_MKNOD", Value: 27},
	"CAP_LEASE":              {Name: "CAP_LEASE", Value: 28},
	"CAP_AUDIT_WRITE":        {Name: "CAP_AUDIT_WRITE", Value: 29},
	"CAP_AUDIT_CONTROL":      {Name: "CAP_AUDIT_CONTROL", Value: 30},
	"CAP_SETFCAP":            {Name: "CAP_SETFCAP", Value: 31},
	"CAP_MAC_OVERRIDE":       {Name: "CAP_MAC_OVERRIDE", Value: 32},
	"CAP_MAC_ADMIN":          {Name: "CAP_MAC_ADMIN", Value: 33},
	"CAP_SYSLOG":             {Name: "CAP_SYSLOG", Value: 34},
	"CAP_WAKE_ALARM":         {Name: "CAP_WAKE_ALARM", Value: 35},
	"CAP_BLOCK_SUSPEND":      {Name: "CAP_BLOCK_SUSPEND", Value: 36},
	"CAP_AUDIT_READ":         {Name: "CAP_AUDIT_READ", Value: 37},
	"CAP_PERFMON":            {Name: "CAP_PERFMON", Value: 38},
	"CAP_BPF":                {Name: "CAP_BPF", Value: 39},
	"CAP_CHECKPOINT_RESTORE": {Name: "CAP_CHECKPOINT_RESTORE", Value: 40},
}

var lastCap uint

func init() {
	for _, capb := range Map {
		if capb.Value > lastCap {
			lastCap = capb.Value
		}
	}
}

// LastCap returns the highest capability value known to this package.
func LastCap() uint {
	return lastCap
}

// Name returns the capability name for value, or an empty string when
// the value is unknown.
func Name(value uint) string {
	for _, capb := range Map {
		if capb.Value == value {
			return capb.Name
		}
	}
	return ""
}

// FromNames converts a list of capability names to a bitmask spanning
// capability values 0 to 63. Names are normalized before lookup; an
// unrecognized name is an error.
func FromNames(names []string) (uint64, error) {
	var caps uint64

	for _, name := range names {
		capb, ok := Map[normalize(name)]
		if !ok {
			return 0, fmt.Errorf("unknown capability %s", name)
		}
		caps |= uint64(1) << capb.Value
	}

	return caps, nil
}

// normalize gives the canonical form of a capability name, upper case
// with the CAP_ prefix.
func normalize(name string) string {
	const capPrefix = "CAP_"

	name = strings.TrimSpace(name)
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, capPrefix) {
		name = capPrefix + name
	}
	return name
}
