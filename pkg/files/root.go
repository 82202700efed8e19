package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidName is returned for empty names or names containing a separator.
	ErrInvalidName = errors.New("files: invalid file name")

	// ErrNotDirectory is returned when a listing targets a regular file.
	ErrNotDirectory = errors.New("files: not a directory")

	// ErrExists is returned when a create or copy target already exists.
	ErrExists = errors.New("files: target already exists")
)

// ProgressFunc receives copy progress in bytes. total is -1 when unknown.
type ProgressFunc func(done, total int64)

// copyChunk is the buffer size for copies and the progress granularity.
const copyChunk = 256 * 1024

// Root is the host filesystem seen through a virtual root. Client paths are
// always absolute virtual paths ("/", "/sdcard/DCIM"); they never escape the
// root via "..".
type Root struct {
	dir        string
	showHidden bool
}

// NewRoot returns a Root rooted at dir ("/" when empty).
func NewRoot(dir string, showHidden bool) (*Root, error) {
	if dir == "" {
		dir = "/"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat root %q: %w", abs, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("root %q: %w", abs, ErrNotDirectory)
	}
	return &Root{dir: abs, showHidden: showHidden}, nil
}

// Dir returns the host directory backing the virtual root.
func (r *Root) Dir() string { return r.dir }

// clean normalizes a client path into a virtual absolute path.
func clean(p string) string {
	return path.Clean("/" + filepath.ToSlash(p))
}

// hostPath maps a client path to the host path below the root.
func (r *Root) hostPath(p string) string {
	return filepath.Join(r.dir, filepath.FromSlash(clean(p)))
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// List returns the children of dir, directories first.
func (r *Root) List(ctx context.Context, serverID int64, dir string) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	virtual := clean(dir)
	host := r.hostPath(virtual)

	fi, err := os.Stat(host)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", virtual, ErrNotDirectory)
	}

	des, err := os.ReadDir(host)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if !r.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		infos = append(infos, newInfo(serverID, path.Join(virtual, name), info))
	}
	sortInfos(infos)
	return infos, nil
}

// Stat describes a single path.
func (r *Root) Stat(ctx context.Context, serverID int64, p string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	virtual := clean(p)
	fi, err := os.Stat(r.hostPath(virtual))
	if err != nil {
		return Info{}, err
	}
	return newInfo(serverID, virtual, fi), nil
}

// Exists reports whether p exists.
func (r *Root) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Lstat(r.hostPath(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Mkdir creates the directory name inside parent.
func (r *Root) Mkdir(ctx context.Context, parent, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	err := os.Mkdir(r.hostPath(path.Join(clean(parent), name)), 0o755)
	if errors.Is(err, os.ErrExist) {
		return ErrExists
	}
	return err
}

// Rename renames p to newName within its parent directory.
func (r *Root) Rename(ctx context.Context, p, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName(newName) {
		return fmt.Errorf("%q: %w", newName, ErrInvalidName)
	}
	virtual := clean(p)
	if virtual == "/" {
		return fmt.Errorf("cannot rename the root: %w", ErrInvalidName)
	}
	target := path.Join(path.Dir(virtual), newName)
	if _, err := os.Lstat(r.hostPath(target)); err == nil {
		return ErrExists
	}
	return os.Rename(r.hostPath(virtual), r.hostPath(target))
}

// Remove deletes p and, for directories, everything below it.
func (r *Root) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	virtual := clean(p)
	if virtual == "/" {
		return fmt.Errorf("cannot delete the root: %w", ErrInvalidName)
	}
	host := r.hostPath(virtual)
	if _, err := os.Lstat(host); err != nil {
		return err
	}
	return os.RemoveAll(host)
}

// Copy copies src (file or directory tree) to dstFolder/dstName. An empty
// dstName keeps the source name. progress, when non-nil, is called as bytes
// are written.
func (r *Root) Copy(ctx context.Context, src, dstFolder, dstName string, progress ProgressFunc) error {
	srcVirtual := clean(src)
	if dstName == "" {
		dstName = path.Base(srcVirtual)
	}
	if !validName(dstName) {
		return fmt.Errorf("%q: %w", dstName, ErrInvalidName)
	}
	dstVirtual := path.Join(clean(dstFolder), dstName)
	if dstVirtual == srcVirtual || strings.HasPrefix(dstVirtual, srcVirtual+"/") {
		return fmt.Errorf("cannot copy %s into itself", srcVirtual)
	}

	srcHost, dstHost := r.hostPath(srcVirtual), r.hostPath(dstVirtual)
	if _, err := os.Lstat(dstHost); err == nil {
		return ErrExists
	}

	total, err := treeSize(srcHost)
	if err != nil {
		return err
	}
	pw := &progressWriter{total: total, report: progress}

	fi, err := os.Stat(srcHost)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return copyFile(ctx, srcHost, dstHost, fi.Mode().Perm(), pw)
	}

	return filepath.WalkDir(srcHost, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcHost, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dstHost, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(ctx, p, target, info.Mode().Perm(), pw)
	})
}

// CopyFrom writes the contents of src to a new file dstFolder/dstName. An
// existing target is rejected with ErrExists, as in Copy.
func (r *Root) CopyFrom(ctx context.Context, src io.Reader, size int64, dstFolder, dstName string, progress ProgressFunc) error {
	if !validName(dstName) {
		return fmt.Errorf("%q: %w", dstName, ErrInvalidName)
	}
	dst, err := os.OpenFile(r.hostPath(path.Join(clean(dstFolder), dstName)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return ErrExists
	}
	if err != nil {
		return err
	}
	pw := &progressWriter{total: size, report: progress}
	if err := copyStream(ctx, dst, src, pw); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func copyFile(ctx context.Context, src, dst string, perm os.FileMode, pw *progressWriter) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm|0o600)
	if err != nil {
		return err
	}
	if err := copyStream(ctx, out, in, pw); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copyStream(ctx context.Context, dst io.Writer, src io.Reader, pw *progressWriter) error {
	buf := make([]byte, copyChunk)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
			pw.add(int64(n))
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func treeSize(host string) (int64, error) {
	var total int64
	err := filepath.WalkDir(host, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

type progressWriter struct {
	done   int64
	total  int64
	report ProgressFunc
}

func (p *progressWriter) add(n int64) {
	p.done += n
	if p.report != nil {
		p.report(p.done, p.total)
	}
}
