// Package fsblob implements blob.Store on the local filesystem.
// Every object has a JSON sidecar (<file>.meta) holding its content type and metadata.
package fsblob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/blob"
)

const metaExt = ".meta"

type Store struct {
	root string
}

var _ blob.Store = (*Store)(nil)

// New returns a filesystem-backed store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating blob root")
	}
	return &Store{root: root}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

type metaFile struct {
	ContentType string            `json:"contentType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (s *Store) pathFor(key string) (dataPath, metaPath string, err error) {
	key, err = blob.CleanKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, filepath.FromSlash(key))
	return dataPath, dataPath + metaExt, nil
}

func (s *Store) Put(_ context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	dir := filepath.Dir(dataPath)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return blob.Info{}, errors.Wrap(err, "creating blob dir")
	}

	// stream to a temp file, then move it into place
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return blob.Info{}, errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if cErr := tmp.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		return blob.Info{}, errors.Wrap(err, "writing blob")
	}
	if err = os.Rename(tmp.Name(), dataPath); err != nil {
		return blob.Info{}, errors.Wrap(err, "moving blob")
	}

	mf := metaFile{
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		UpdatedAt:   core.NowFunc().UTC(),
	}
	b, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return blob.Info{}, err
	}
	if err = os.WriteFile(metaPath, b, 0o644); err != nil {
		return blob.Info{}, errors.Wrap(err, "writing blob meta")
	}
	return mf.info(key), nil
}

func (s *Store) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	dataPath, _, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	info, err := s.Head(ctx, key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	file, err := os.Open(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return blob.Info{}, nil, blob.ErrNotFound
		}
		return blob.Info{}, nil, err
	}
	return info, file, nil
}

func (s *Store) Head(_ context.Context, key string) (blob.Info, error) {
	_, metaPath, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	mf, err := readMeta(metaPath)
	if err != nil {
		return blob.Info{}, err
	}
	return mf.info(key), nil
}

func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	if err = os.Remove(dataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	_ = os.Remove(metaPath)
	return true, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	infos := make([]blob.Info, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, metaExt) {
			return nil
		}
		rel, err := filepath.Rel(s.root, strings.TrimSuffix(path, metaExt))
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		mf, err := readMeta(path)
		if err != nil {
			return err
		}
		infos = append(infos, mf.info(key))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking blob root")
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL is not supported: files are served by the API under /media.
func (s *Store) PresignURL(context.Context, string, blob.SignedURLOptions) (string, error) {
	return "", blob.ErrUnsupported
}

func (mf metaFile) info(key string) blob.Info {
	return blob.Info{
		Key:          key,
		Size:         mf.Size,
		ContentType:  mf.ContentType,
		ETag:         mf.ETag,
		Metadata:     mf.Metadata,
		LastModified: mf.UpdatedAt,
	}
}

func readMeta(path string) (metaFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return metaFile{}, blob.ErrNotFound
		}
		return metaFile{}, err
	}
	var mf metaFile
	if err = json.Unmarshal(b, &mf); err != nil {
		return metaFile{}, errors.Wrap(err, "decoding blob meta")
	}
	return mf, nil
}
