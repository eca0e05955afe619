package dataset

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"

	"urbanmart-dashboard/internal/errors"
)

// Source is a tabular input that can be read in full.
type Source interface {
	Name() string
	ReadAll() ([]byte, error)
}

type fileSource struct {
	path string
}

func File(path string) Source {
	return fileSource{path: path}
}

func (f fileSource) Name() string { return f.path }

func (f fileSource) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.SourceNotFound(f.path, err)
	}
	if err != nil {
		return nil, errors.InternalWrap(err, fmt.Sprintf("read %s", f.path))
	}
	return data, nil
}

type bytesSource struct {
	name string
	data []byte
}

// Bytes wraps in-memory CSV content, for uploads and tests.
func Bytes(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (b bytesSource) Name() string { return b.name }

func (b bytesSource) ReadAll() ([]byte, error) { return b.data, nil }

// Snapshot is the content of a source at one point in time together with
// its identity. Equal identities mean equal content under the same name.
type Snapshot struct {
	Name     string
	Identity string
	Data     []byte
}

func Take(src Source) (Snapshot, error) {
	data, err := src.ReadAll()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Name:     src.Name(),
		Identity: Identity(src.Name(), data),
		Data:     data,
	}, nil
}

func Identity(name string, data []byte) string {
	return fmt.Sprintf("%s@%016x", name, xxhash.Sum64(data))
}
