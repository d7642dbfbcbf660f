// Package snapshot stores the whole task collection as one binary file.
//
// Layout: 8 bytes magic "TODOSNAP", big-endian uint16 format version, gob stream.
// Bump Version whenever model.TaskState changes; files of other versions are rejected.
package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agalitsyn/todo/internal/model"
)

const Version uint16 = 1

var magic = [8]byte{'T', 'O', 'D', 'O', 'S', 'N', 'A', 'P'}

var (
	ErrNotSnapshot        = errors.New("not a task snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

type payload struct {
	Tasks []model.TaskState
}

func Encode(w io.Writer, tasks []model.TaskState) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, Version); err != nil {
		return fmt.Errorf("could not write version: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(payload{Tasks: tasks}); err != nil {
		return fmt.Errorf("could not encode tasks: %w", err)
	}
	return nil
}

func Decode(r io.Reader) ([]model.TaskState, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrNotSnapshot
		}
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	if head != magic {
		return nil, ErrNotSnapshot
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("could not read version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, Version)
	}

	var p payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("could not decode tasks: %w", err)
	}
	return p.Tasks, nil
}

// WriteFile replaces path atomically: data goes to a temp file in the same
// directory which is then renamed over the target.
func WriteFile(path string, tasks []model.TaskState) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err = Encode(bw, tasks); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("could not flush snapshot: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("could not sync snapshot: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("could not close snapshot: %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("could not replace snapshot: %w", err)
	}
	return nil
}

// ReadFile returns an error wrapping fs.ErrNotExist when there is no snapshot yet.
func ReadFile(path string) ([]model.TaskState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}
