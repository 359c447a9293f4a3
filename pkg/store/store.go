package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oneconcern/strata/pkg/cafs"
	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/storage"
	storagestatus "github.com/oneconcern/strata/pkg/storage/status"
	"github.com/oneconcern/strata/pkg/store/status"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Store is the content-addressable object store of a repository
type Store struct {
	metadata  storage.Store
	blob      storage.Store
	contexter func() context.Context
	l         *zap.Logger
	cacheSize int
	commits   *lru.Cache[model.CommitID, *Commit]
	emptyTree *Tree
}

// New object store, on top of the metadata and blob stores of a repository
func New(stores context2.Stores, opts ...Option) *Store {
	s := &Store{
		metadata:  stores.Metadata(),
		blob:      stores.Blob(),
		contexter: backgroundContexter,
		l:         zap.NewNop(),
		cacheSize: 1024,
	}
	for _, apply := range opts {
		apply(s)
	}

	cache, err := lru.New[model.CommitID, *Commit](s.cacheSize)
	if err != nil {
		panic(fmt.Sprintf("dev error: invalid commit cache size: %v", err))
	}
	s.commits = cache

	var empty model.TreeDescriptor
	empty.Entries = []model.TreeEntry{}
	b, _, err := encode(empty)
	if err != nil {
		panic(fmt.Sprintf("dev error: cannot encode the empty tree: %v", err))
	}
	s.emptyTree = &Tree{id: model.TreeID(hash(b)), desc: empty}
	return s
}

func (s *Store) String() string {
	return fmt.Sprintf("store(metadata: %v, blob: %v)", s.metadata, s.blob)
}

func hash(b []byte) string {
	return cafs.KeyFromContent(b).String()
}

func encode(obj interface{}) ([]byte, string, error) {
	b, err := yaml.Marshal(obj)
	if err != nil {
		return nil, "", err
	}
	return b, hash(b), nil
}

// writeObject puts an encoded object. An object already present is not an error, since its content is the same.
func (s *Store) writeObject(target storage.Store, key string, b []byte) error {
	err := target.Put(s.contexter(), key, bytes.NewReader(b), storage.NoOverWrite)
	if err != nil && !errors.Is(err, storagestatus.ErrExists) {
		return status.ErrWrite.WrapWithLog(s.l, err, zap.String("key", key))
	}
	return nil
}

// readObject retrieves a descriptor and checks its content against the expected id
func (s *Store) readObject(key, id string, obj interface{}) error {
	b, err := storage.ReadAll(s.contexter(), s.metadata, key)
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return status.ErrNotFound.Wrap(err)
		}
		return err
	}
	if hash(b) != id {
		return status.ErrCorrupt.WrapMessage("content of %s does not match its id", key)
	}
	if err := yaml.Unmarshal(b, obj); err != nil {
		return status.ErrCorrupt.Wrap(err)
	}
	return nil
}

// EmptyTreeID yields the id of the tree without any entry
func (s *Store) EmptyTreeID() model.TreeID {
	return s.emptyTree.id
}

// WriteCommit persists a new commit
func (s *Store) WriteCommit(desc model.CommitDescriptor) (*Commit, error) {
	desc = desc.Clone()
	b, id, err := encode(desc)
	if err != nil {
		return nil, status.ErrWrite.Wrap(err)
	}
	commitID := model.CommitID(id)
	if err := s.writeObject(s.metadata, model.GetPathToCommit(commitID), b); err != nil {
		return nil, err
	}
	commit := &Commit{id: commitID, desc: desc, store: s}
	s.commits.Add(commitID, commit)
	s.l.Debug("commit written", zap.String("commit", id), zap.String("change", string(desc.ChangeID)))
	return commit, nil
}

// GetCommit retrieves a commit
func (s *Store) GetCommit(id model.CommitID) (*Commit, error) {
	if commit, ok := s.commits.Get(id); ok {
		return commit, nil
	}
	var desc model.CommitDescriptor
	if err := s.readObject(model.GetPathToCommit(id), string(id), &desc); err != nil {
		return nil, err
	}
	commit := &Commit{id: id, desc: desc, store: s}
	s.commits.Add(id, commit)
	return commit, nil
}

// WriteTree persists a tree. Entries are sorted by path and paths are normalized.
func (s *Store) WriteTree(desc model.TreeDescriptor) (model.TreeID, error) {
	entries := make([]model.TreeEntry, 0, len(desc.Entries))
	seen := make(map[string]struct{}, len(desc.Entries))
	for _, entry := range desc.Entries {
		pth := model.CleanRepoPath(entry.Path)
		if pth == "" || !entry.Value.Kind.IsValid() {
			return "", status.ErrInvalidTree.WrapMessage("path: %q, kind: %q", entry.Path, entry.Value.Kind)
		}
		if _, dup := seen[pth]; dup {
			return "", status.ErrInvalidTree.WrapMessage("duplicate path: %q", pth)
		}
		seen[pth] = struct{}{}
		entries = append(entries, model.TreeEntry{Path: pth, Value: entry.Value})
	}
	tree := model.TreeDescriptor{Entries: entries}
	tree.Sort()

	b, id, err := encode(tree)
	if err != nil {
		return "", status.ErrWrite.Wrap(err)
	}
	treeID := model.TreeID(id)
	if err := s.writeObject(s.metadata, model.GetPathToTree(treeID), b); err != nil {
		return "", err
	}
	return treeID, nil
}

// GetTree retrieves a tree
func (s *Store) GetTree(id model.TreeID) (*Tree, error) {
	if id == s.emptyTree.id {
		return s.emptyTree, nil
	}
	var desc model.TreeDescriptor
	if err := s.readObject(model.GetPathToTree(id), string(id), &desc); err != nil {
		return nil, err
	}
	return &Tree{id: id, desc: desc}, nil
}

// WriteConflict persists a conflict
func (s *Store) WriteConflict(desc model.ConflictDescriptor) (model.ConflictID, error) {
	b, id, err := encode(desc)
	if err != nil {
		return "", status.ErrWrite.Wrap(err)
	}
	conflictID := model.ConflictID(id)
	if err := s.writeObject(s.metadata, model.GetPathToConflict(conflictID), b); err != nil {
		return "", err
	}
	return conflictID, nil
}

// ReadConflict retrieves a conflict
func (s *Store) ReadConflict(id model.ConflictID) (model.ConflictDescriptor, error) {
	var desc model.ConflictDescriptor
	err := s.readObject(model.GetPathToConflict(id), string(id), &desc)
	return desc, err
}

// WriteFile persists the content of the file located at some path in the repository
func (s *Store) WriteFile(pth string, content io.Reader) (model.FileID, error) {
	b, err := ioutil.ReadAll(content)
	if err != nil {
		return "", status.ErrWrite.WrapWithLog(s.l, err, zap.String("path", pth))
	}
	id := model.FileID(hash(b))
	if err := s.writeObject(s.blob, model.GetPathToFile(id), b); err != nil {
		return "", err
	}
	s.l.Debug("file written", zap.String("path", pth), zap.String("file", string(id)), zap.Int("size", len(b)))
	return id, nil
}

// ReadFile retrieves the content of a file located at some path in the repository
func (s *Store) ReadFile(pth string, id model.FileID) (io.ReadCloser, error) {
	rdr, err := s.blob.Get(s.contexter(), model.GetPathToFile(id))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			s.l.Debug("file not found", zap.String("path", pth), zap.String("file", string(id)))
			return nil, status.ErrNotFound.Wrap(err)
		}
		return nil, err
	}
	return rdr, nil
}

// TreeBuilder starts building a new tree from some base tree
func (s *Store) TreeBuilder(base model.TreeID) *TreeBuilder {
	return &TreeBuilder{
		store:     s,
		base:      base,
		overrides: make(map[string]*model.TreeValue),
	}
}
