// Copyright (c) 2025-2026, Vessel Systems Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package mount

import (
	"fmt"
)

// hookFn describes function prototype for function
// to be called before/after mounting the point list
type hookFn func(*System) error

// mountFn describes function prototype for function responsible
// of mount operation
type mountFn func(*Point, *System) error

// System defines a mount system allowing to register hook functions
// executed before and after the mount point list is processed
type System struct {
	Points      *Points
	Mount       mountFn
	beforeHooks []hookFn
	afterHooks  []hookFn
}

// RunBeforeMount registers a hook function executed before the
// mount point list is mounted
func (b *System) RunBeforeMount(fn hookFn) {
	b.beforeHooks = append(b.beforeHooks, fn)
}

// RunAfterMount registers a hook function executed once the whole
// mount point list has been mounted
func (b *System) RunAfterMount(fn hookFn) {
	b.afterHooks = append(b.afterHooks, fn)
}

// MountAll iterates over the mount point list and mounts every point
// in registration order, calling hook functions around the whole pass
func (b *System) MountAll() error {
	for _, fn := range b.beforeHooks {
		if err := fn(b); err != nil {
			return fmt.Errorf("hook function returned error: %s", err)
		}
	}
	for _, point := range b.Points.GetAll() {
		if b.Mount != nil {
			if err := b.Mount(&point, b); err != nil {
				return fmt.Errorf("mount %s->%s error: %s", point.Source, point.Destination, err)
			}
		}
	}
	for _, fn := range b.afterHooks {
		if err := fn(b); err != nil {
			return fmt.Errorf("hook function returned error: %s", err)
		}
	}
	return nil
}
