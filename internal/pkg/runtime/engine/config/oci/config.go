// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package oci loads, saves and generates the OCI runtime configuration
// of a bundle.
package oci

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/opencontainers/runtime-tools/generate"
	"github.com/vessel-systems/vessel/internal/pkg/util/fs"
	"golang.org/x/sys/unix"
)

// ConfigFile is the name of the runtime configuration file expected in
// a bundle directory.
const ConfigFile = "config.json"

// Config is the OCI runtime configuration.
type Config struct {
	generate.Generator
	specs.Spec
}

// MarshalJSON implements json.Marshaler.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(&c.Spec)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Config) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &c.Spec); err != nil {
		return err
	}
	c.Generator = generate.NewFromSpec(&c.Spec)
	return nil
}

// LoadConfig reads the runtime configuration file at path into cfg and
// binds a generator to the parsed configuration.
func LoadConfig(path string, cfg *Config) error {
	if !fs.IsFile(path) {
		return fmt.Errorf("no configuration file found at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %s", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse configuration file %s: %s", path, err)
	}
	return nil
}

// SaveConfig writes the configuration held by the generator to path.
// Symbolic links are refused, a bundle must not be able to redirect
// the write outside of its directory.
func SaveConfig(path string, g *generate.Generator) error {
	if fs.IsLink(path) {
		return fmt.Errorf("%s is a symbolic link", path)
	}

	data, err := json.MarshalIndent(g.Config, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %s", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|unix.O_NOFOLLOW, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create configuration file %s: %s", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write configuration file %s: %s", path, err)
	}
	return nil
}

// DefaultConfig returns an OCI config generator with the default
// vessel container configuration.
func DefaultConfig() (*generate.Generator, error) {
	config := specs.Spec{
		Version:  specs.Version,
		Hostname: "mrsdalloway",
	}

	config.Root = &specs.Root{
		Path:     "rootfs",
		Readonly: false,
	}
	config.Process = &specs.Process{
		Terminal: false,
		Args: []string{
			"sh",
		},
		NoNewPrivileges: true,
	}

	config.Process.User = specs.User{}
	config.Process.Env = []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		"TERM=xterm",
	}
	config.Process.Cwd = "/"
	config.Process.Rlimits = []specs.POSIXRlimit{
		{
			Type: "RLIMIT_NOFILE",
			Hard: uint64(1024),
			Soft: uint64(1024),
		},
	}

	defaultCaps := []string{
		"CAP_CHOWN",
		"CAP_DAC_OVERRIDE",
		"CAP_FSETID",
		"CAP_FOWNER",
		"CAP_MKNOD",
		"CAP_NET_RAW",
		"CAP_SETGID",
		"CAP_SETUID",
		"CAP_SETFCAP",
		"CAP_SETPCAP",
		"CAP_NET_BIND_SERVICE",
		"CAP_SYS_CHROOT",
		"CAP_KILL",
		"CAP_AUDIT_WRITE",
	}
	config.Process.Capabilities = &specs.LinuxCapabilities{
		Bounding:    defaultCaps,
		Permitted:   defaultCaps,
		Inheritable: defaultCaps,
		Effective:   defaultCaps,
		Ambient:     defaultCaps,
	}

	config.Mounts = []specs.Mount{
		{
			Destination: "/proc",
			Type:        "proc",
			Source:      "proc",
			Options:     []string{"nosuid", "noexec", "nodev"},
		},
		{
			Destination: "/dev",
			Type:        "tmpfs",
			Source:      "tmpfs",
			Options:     []string{"nosuid", "strictatime", "mode=755", "size=65536k"},
		},
		{
			Destination: "/dev/pts",
			Type:        "devpts",
			Source:      "devpts",
			Options:     []string{"nosuid", "noexec", "newinstance", "ptmxmode=0666", "mode=0620", "gid=5"},
		},
		{
			Destination: "/dev/shm",
			Type:        "tmpfs",
			Source:      "shm",
			Options:     []string{"nosuid", "noexec", "nodev", "mode=1777", "size=65536k"},
		},
		{
			Destination: "/dev/mqueue",
			Type:        "mqueue",
			Source:      "mqueue",
			Options:     []string{"nosuid", "noexec", "nodev"},
		},
		{
			Destination: "/sys",
			Type:        "sysfs",
			Source:      "sysfs",
			Options:     []string{"nosuid", "noexec", "nodev", "ro"},
		},
		{
			Destination: "/sys/fs/cgroup",
			Type:        "cgroup",
			Source:      "cgroup",
			Options:     []string{"nosuid", "noexec", "nodev", "relatime", "ro"},
		},
	}
	config.Linux = &specs.Linux{
		Namespaces: []specs.LinuxNamespace{
			{
				Type: "pid",
			},
			{
				Type: "network",
			},
			{
				Type: "ipc",
			},
			{
				Type: "uts",
			},
			{
				Type: "mount",
			},
		},
	}

	return &generate.Generator{Config: &config}, nil
}

// DefaultRootlessConfig returns an OCI config generator with the
// default configuration adjusted for creation by an unprivileged user:
// a user namespace is added and mounts that need host privileges are
// rewritten.
func DefaultRootlessConfig() (*generate.Generator, error) {
	g, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	c := g.Config

	c.Linux.Namespaces = append(c.Linux.Namespaces, specs.LinuxNamespace{
		Type: "user",
	})

	for i, m := range c.Mounts {
		switch m.Destination {
		case "/sys":
			// a fresh sysfs mount is refused in a user namespace
			// owning no network namespace, bind the host view instead
			c.Mounts[i] = specs.Mount{
				Destination: "/sys",
				Type:        "bind",
				Source:      "/sys",
				Options:     []string{"nosuid", "noexec", "nodev", "ro"},
			}
		case "/dev/pts":
			// the tty group has no meaning for an unprivileged user
			opts := make([]string, 0, len(m.Options))
			for _, o := range m.Options {
				if strings.HasPrefix(o, "gid=") {
					continue
				}
				opts = append(opts, o)
			}
			c.Mounts[i].Options = opts
		}
	}

	return g, nil
}
