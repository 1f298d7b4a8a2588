package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

// Filesystem is rooted at a directory; every path resolves inside it, so
// "../" and absolute names cannot escape the root.
type Filesystem struct {
	root string
	dfd  int
}

func newFilesystem(root string) (*Filesystem, error) {
	dfd, err := unix.Open(root, unix.O_DIRECTORY|unix.O_PATH|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage root %s: %w", root, err)
	}
	return &Filesystem{
		root: root,
		dfd:  dfd,
	}, nil
}

func (f *Filesystem) Close() error {
	return unix.Close(f.dfd)
}

func (f *Filesystem) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return f.openFile(name, os.O_RDONLY, 0)
}

func (f *Filesystem) Create(_ context.Context, name string) (io.WriteCloser, error) {
	return f.openFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
}

func (f *Filesystem) openParentOf(name string) (*os.File, error) {
	return f.openFile(filepath.Dir(name), unix.O_DIRECTORY|unix.O_PATH, 0)
}

func (f *Filesystem) mkdir(name string, perm fs.FileMode) error {
	parent, err := f.openParentOf(name)
	if err != nil {
		return err
	}
	defer parent.Close()

	return unix.Mkdirat(int(parent.Fd()), filepath.Base(name), uint32(perm))
}

func (f *Filesystem) MkdirAll(path string, perm fs.FileMode) error {
	if path == "" || path == "." || path == "/" {
		return nil
	}

	err := f.mkdir(path, perm)
	if err == nil || errors.Is(err, unix.EEXIST) {
		return nil
	}

	err = f.MkdirAll(filepath.Dir(path), perm)
	if err != nil {
		return err
	}

	err = f.mkdir(path, perm)
	if err != nil && !errors.Is(err, unix.EEXIST) {
		return err
	}
	return nil
}

func (f *Filesystem) openFile(name string, flag int, perm fs.FileMode) (*os.File, error) {
	// RESOLVE_IN_ROOT keeps symlinks working while pinning them under the root.
	for {
		how := unix.OpenHow{
			Flags:   uint64(flag) | unix.O_CLOEXEC, //nolint:gosec // open flags are non-negative
			Mode:    uint64(perm),
			Resolve: unix.RESOLVE_IN_ROOT,
		}
		fd, err := unix.Openat2(f.dfd, name, &how)
		if err != nil {
			// EINTR: Go issues 11180, 39237. EAGAIN: racing rename.
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}

		return os.NewFile(uintptr(fd), name), nil
	}
}

func (f *Filesystem) Remove(_ context.Context, name string) error {
	// unlinkat has no RESOLVE_IN_ROOT, so resolve the parent first.
	parent, err := f.openParentOf(name)
	if err != nil {
		return err
	}
	defer parent.Close()

	err = unix.Unlinkat(int(parent.Fd()), filepath.Base(name), 0)
	if errors.Is(err, unix.EISDIR) {
		err = unix.Unlinkat(int(parent.Fd()), filepath.Base(name), unix.AT_REMOVEDIR)
	}
	if err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	return nil
}

func (f *Filesystem) List(_ context.Context, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	d, err := f.openFile(dir, os.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *Filesystem) Sub(dir string) (Storage, error) {
	if err := f.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return newFilesystem(filepath.Join(f.root, dir))
}
