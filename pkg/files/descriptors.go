package files

import (
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"
)

// ErrDescriptorNotFound is returned for unknown or already consumed handles.
var ErrDescriptorNotFound = errors.New("files: descriptor not found")

type descriptor struct {
	file *os.File
	size int64
}

// Descriptors hands out opaque handles for open files. A handle is consumed
// by Take; handles never taken are closed by CloseAll.
type Descriptors struct {
	mu    sync.Mutex
	files map[string]descriptor
}

// NewDescriptors returns an empty table.
func NewDescriptors() *Descriptors {
	return &Descriptors{files: make(map[string]descriptor)}
}

// Put registers f and returns its handle.
func (d *Descriptors) Put(f *os.File) (string, error) {
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	d.mu.Lock()
	d.files[id] = descriptor{file: f, size: fi.Size()}
	d.mu.Unlock()
	return id, nil
}

// Take removes the handle and returns its file and size. The caller owns
// the file afterwards.
func (d *Descriptors) Take(id string) (*os.File, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	desc, ok := d.files[id]
	if !ok {
		return nil, 0, ErrDescriptorNotFound
	}
	delete(d.files, id)
	return desc.file, desc.size, nil
}

// Len returns the number of open handles.
func (d *Descriptors) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

// CloseAll closes every open handle.
func (d *Descriptors) CloseAll() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for id, desc := range d.files {
		errs = append(errs, desc.file.Close())
		delete(d.files, id)
	}
	return errors.Join(errs...)
}
