package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/repo"
	"github.com/oneconcern/strata/pkg/storage"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// workspaceDir holds the context descriptor and the stores of a repository
const workspaceDir = ".strata"

// workspace is a repository opened by a command
type workspace struct {
	dir    string
	stores context2.Stores
	repo   *repo.ReadonlyRepo
	l      *zap.Logger
}

func workspacePath() (string, error) {
	root, err := filepath.Abs(params.root.repository)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, workspaceDir), nil
}

// configStore holds the context descriptor of the repository
func configStore(dir string) (storage.Store, error) {
	return localfs.NewAtomic(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

func initWorkspace(ctx context.Context, backend model.Backend) (*workspace, error) {
	l, err := getLogger()
	if err != nil {
		return nil, err
	}
	dir, err := workspacePath()
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	config, err := configStore(dir)
	if err != nil {
		return nil, err
	}

	c := model.Context{
		Name:     filepath.Base(filepath.Dir(dir)),
		Backend:  backend,
		Metadata: "metadata",
		Blob:     "blob",
		OpLog:    "oplog",
		Version:  model.CurrentContextVersion,
	}
	if err = context2.CreateContext(ctx, config, c); err != nil {
		return nil, fmt.Errorf("a repository already exists in %s: %w", dir, err)
	}
	stores, err := context2.Open(dir, c, context2.Logger(l))
	if err != nil {
		return nil, err
	}
	r, err := repo.Init(userSettings, stores, repo.Logger(l))
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return &workspace{dir: dir, stores: stores, repo: r, l: l}, nil
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	l, err := getLogger()
	if err != nil {
		return nil, err
	}
	dir, err := workspacePath()
	if err != nil {
		return nil, err
	}
	if _, err = os.Stat(dir); err != nil {
		return nil, fmt.Errorf("no repository found at %s: %w", filepath.Dir(dir), err)
	}
	config, err := configStore(dir)
	if err != nil {
		return nil, err
	}
	c, err := context2.GetContext(ctx, config)
	if err != nil {
		return nil, err
	}
	stores, err := context2.Open(dir, *c, context2.Logger(l))
	if err != nil {
		return nil, err
	}
	r, err := repo.Load(userSettings, stores, repo.Logger(l))
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return &workspace{dir: dir, stores: stores, repo: r, l: l}, nil
}

func (w *workspace) Close() {
	_ = w.stores.Close()
	_ = w.l.Sync()
}

// transact runs some changes in a transaction, committed when they all succeed
func (w *workspace) transact(description string, changes func(*repo.Transaction) error) error {
	tx := w.repo.StartTransaction(description)
	if err := changes(tx); err != nil {
		tx.Discard()
		return err
	}
	_, err := tx.Commit()
	return err
}

// checkout yields the commit checked out in the working copy
func (w *workspace) checkout() (*store.Commit, error) {
	return w.repo.Store().GetCommit(w.repo.View().Checkout())
}

// rewriteCheckout replaces the checkout with a rewritten commit
func rewriteCheckout(tx *repo.Transaction, b *repo.CommitBuilder) (*store.Commit, error) {
	c, err := b.WriteToTransaction(tx)
	if err != nil {
		return nil, err
	}
	tx.SetCheckout(c.ID())
	return c, nil
}
