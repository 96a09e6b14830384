// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mount

import (
	"fmt"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"
)

// mountFlags lists the option keywords translated to mount flag bits.
// Keywords not present here are passed to the kernel as filesystem
// specific data.
var mountFlags = []struct {
	option string
	flag   uintptr
}{
	{"dirsync", unix.MS_DIRSYNC},
	{"lazytime", unix.MS_LAZYTIME},
	{"noatime", unix.MS_NOATIME},
	{"nodev", unix.MS_NODEV},
	{"nodiratime", unix.MS_NODIRATIME},
	{"noexec", unix.MS_NOEXEC},
	{"nosuid", unix.MS_NOSUID},
	{"private", unix.MS_PRIVATE},
	{"relatime", unix.MS_RELATIME},
	{"ro", unix.MS_RDONLY},
	{"rprivate", unix.MS_PRIVATE | unix.MS_REC},
	{"rshared", unix.MS_SHARED | unix.MS_REC},
	{"rslave", unix.MS_SLAVE | unix.MS_REC},
	{"shared", unix.MS_SHARED},
	{"slave", unix.MS_SLAVE},
	{"strictatime", unix.MS_STRICTATIME},
	{"synchronous", unix.MS_SYNCHRONOUS},
	{"unbindable", unix.MS_UNBINDABLE},
}

// ConvertOptions converts an options list into a pair of mount flags
// and filesystem specific options
func ConvertOptions(options []string) (uintptr, []string) {
	var flags uintptr
	finalOpt := []string{}
	isFlag := false

	for _, option := range options {
		optionTrim := strings.TrimSpace(option)
		for _, flag := range mountFlags {
			if flag.option == optionTrim {
				flags |= flag.flag
				isFlag = true
				break
			}
		}
		if !isFlag {
			finalOpt = append(finalOpt, optionTrim)
		}
		isFlag = false
	}
	return flags, finalOpt
}

// DefaultFlags returns the default mount flags and filesystem data
// applied to well known destinations when a mount entry carries no
// explicit options. The /dev/pts gid option is set only when the
// invoking user is host root, as group 5 (tty) is meaningless once
// remapped inside an unprivileged user namespace.
func DefaultFlags(dest string, hostUID int) (uintptr, string) {
	switch dest {
	case "/proc":
		return 0, ""
	case "/dev/cgroup", "/sys/fs/cgroup":
		return unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_STRICTATIME, "none,name="
	case "/dev":
		return unix.MS_NOEXEC | unix.MS_STRICTATIME, "mode=755"
	case "/dev/shm":
		return unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, "mode=1777,size=65536k"
	case "/dev/mqueue":
		return unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, ""
	case "/dev/pts":
		data := "newinstance,ptmxmode=0666,mode=620"
		if hostUID == 0 {
			data += ",gid=5"
		}
		return unix.MS_NOEXEC | unix.MS_NOSUID, data
	case "/sys":
		return unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, ""
	}
	return 0, ""
}

// HasRemountFlag checks if remount flag is present
func HasRemountFlag(flags uintptr) bool {
	return flags&unix.MS_REMOUNT != 0
}

// HasPropagationFlag checks if a propagation flag is present
func HasPropagationFlag(flags uintptr) bool {
	return flags&(unix.MS_SHARED|unix.MS_SLAVE|unix.MS_PRIVATE|unix.MS_UNBINDABLE) != 0
}

// Point describes a mount point
type Point struct {
	specs.Mount
	Flags uintptr
	Data  string
}

// Points defines and stores an ordered list of mount points. Order is
// significant: points are mounted exactly in registration order, and
// later points may be nested under earlier ones.
type Points struct {
	points []Point
}

// Add registers a mount point with pre-computed mount flags and
// filesystem specific data
func (p *Points) Add(source string, dest string, fstype string, flags uintptr, data string) error {
	if dest == "" {
		return fmt.Errorf("mount point must contain a destination")
	}
	if !strings.HasPrefix(dest, "/") {
		return fmt.Errorf("destination must be an absolute path")
	}
	p.points = append(p.points, Point{
		Mount: specs.Mount{
			Source:      source,
			Destination: dest,
			Type:        fstype,
		},
		Flags: flags,
		Data:  data,
	})
	return nil
}

// AddBind adds a bind mount point
func (p *Points) AddBind(source string, dest string, flags uintptr) error {
	if source == "" {
		return fmt.Errorf("a bind mount point must contain a source")
	}
	if !strings.HasPrefix(source, "/") {
		return fmt.Errorf("source must be an absolute path")
	}
	return p.Add(source, dest, "", flags|unix.MS_BIND, "")
}

// AddRemount adds a mount point to remount
func (p *Points) AddRemount(dest string, flags uintptr) error {
	return p.Add("", dest, "", flags|unix.MS_REMOUNT, "")
}

// GetAll returns all registered mount points in registration order
func (p *Points) GetAll() []Point {
	return p.points
}

// GetByDest returns registered mount points with the matched destination
func (p *Points) GetByDest(dest string) []Point {
	mounts := []Point{}
	for _, point := range p.points {
		if point.Destination == dest {
			mounts = append(mounts, point)
		}
	}
	return mounts
}

// RemoveAll removes all mount points from the list
func (p *Points) RemoveAll() {
	p.points = nil
}
