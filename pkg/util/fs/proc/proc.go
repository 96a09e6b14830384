// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package proc provides small helpers around procfs.
package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// HasFilesystem returns whether the kernel supports the filesystem.
func HasFilesystem(fs string) (bool, error) {
	p, err := os.Open("/proc/filesystems")
	if err != nil {
		return false, fmt.Errorf("can't open /proc/filesystems: %s", err)
	}
	defer p.Close()

	suffix := "\t" + fs
	scanner := bufio.NewScanner(p)
	for scanner.Scan() {
		if strings.HasSuffix(scanner.Text(), suffix) {
			return true, nil
		}
	}
	return false, nil
}

// MountInfoEntry contains parsed fields of a mountinfo line.
type MountInfoEntry struct {
	ID           string
	ParentID     string
	Dev          string
	Root         string
	Point        string
	Options      []string
	Fields       string
	FSType       string
	Source       string
	SuperOptions []string
}

// parseMountInfoLine parses a mountinfo line and returns a
// MountInfoEntry containing the parsed fields of the line.
func parseMountInfoLine(line string) MountInfoEntry {
	fields := strings.Split(line, " ")
	entry := MountInfoEntry{}

	entry.ID = fields[0]
	entry.ParentID = fields[1]
	entry.Dev = fields[2]
	entry.Root = fields[3]
	entry.Point = fields[4]
	entry.Options = strings.Split(fields[5], ",")

	// optional fields end at the separator dash
	index := 6
	for ; fields[index] != "-"; index++ {
		entry.Fields += " " + fields[index]
	}
	entry.Fields = strings.TrimSpace(entry.Fields)

	entry.FSType = fields[index+1]
	entry.Source = fields[index+2]
	entry.SuperOptions = strings.Split(fields[index+3], ",")

	return entry
}

// GetMountInfoEntry parses a mountinfo file and returns all parsed
// entries as an array of MountInfoEntry.
func GetMountInfoEntry(path string) ([]MountInfoEntry, error) {
	p, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open %s: %s", path, err)
	}
	defer p.Close()

	entries := make([]MountInfoEntry, 0)
	scanner := bufio.NewScanner(p)
	for scanner.Scan() {
		entry := parseMountInfoLine(scanner.Text())
		entries = append(entries, entry)
	}

	return entries, nil
}

// ReadIDMap reads uid_map or gid_map and returns both container ID
// and host ID of the first mapping line.
func ReadIDMap(path string) (uint32, uint32, error) {
	r, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return 0, 0, fmt.Errorf("scanner error: %s", scanner.Err())
	}
	fields := strings.Fields(scanner.Text())

	containerID, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	hostID, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}

	return uint32(containerID), uint32(hostID), nil
}

// HasNamespace checks if the namespace of type nstype of the process
// pid differs from the one of the calling thread. The thread and not
// the process is compared, an unshare call moves the calling thread
// only.
func HasNamespace(pid int, nstype string) (bool, error) {
	var st1 unix.Stat_t
	var st2 unix.Stat_t

	has := false

	processOne := fmt.Sprintf("/proc/%d/ns/%s", pid, nstype)
	processTwo := fmt.Sprintf("/proc/thread-self/ns/%s", nstype)

	if err := unix.Stat(processOne, &st1); err != nil {
		if err == unix.ENOENT {
			return has, nil
		}
		return has, err
	}
	if err := unix.Stat(processTwo, &st2); err != nil {
		if err == unix.ENOENT {
			return has, nil
		}
		return has, err
	}

	if st1.Ino != st2.Ino {
		has = true
	}

	return has, nil
}
