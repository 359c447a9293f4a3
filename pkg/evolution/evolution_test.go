package evolution

import (
	"testing"

	context2 "github.com/oneconcern/strata/pkg/context"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/oplog"
	"github.com/oneconcern/strata/pkg/storage/localfs"
	"github.com/oneconcern/strata/pkg/store"
	"github.com/oneconcern/strata/pkg/store/status"
	"github.com/oneconcern/strata/pkg/view"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type graph struct {
	t     *testing.T
	store *store.Store
	opLog *oplog.OpLog
	root  *store.Commit
}

func newGraph(t *testing.T) *graph {
	meta := localfs.New(afero.NewMemMapFs())
	s := store.New(context2.NewStores(meta, meta, nil))
	root, err := s.WriteCommit(model.CommitDescriptor{RootTree: s.EmptyTreeID(), ChangeID: "root"})
	require.NoError(t, err)
	return &graph{
		t:     t,
		store: s,
		opLog: oplog.New(localfs.New(afero.NewMemMapFs()), oplog.Logger(zap.NewNop())),
		root:  root,
	}
}

type commitOpt func(*model.CommitDescriptor)

func parents(cs ...*store.Commit) commitOpt {
	return func(d *model.CommitDescriptor) {
		for _, c := range cs {
			d.Parents = append(d.Parents, c.ID())
		}
	}
}

func rewrites(c *store.Commit) commitOpt {
	return func(d *model.CommitDescriptor) {
		d.Predecessors = append(d.Predecessors, c.ID())
		d.ChangeID = c.ChangeID()
		d.Parents = c.ParentIDs()
	}
}

func pruned(d *model.CommitDescriptor) { d.IsPruned = true }

func description(s string) commitOpt {
	return func(d *model.CommitDescriptor) { d.Description = s }
}

func (g *graph) commit(change string, opts ...commitOpt) *store.Commit {
	d := model.CommitDescriptor{RootTree: g.store.EmptyTreeID(), ChangeID: model.ChangeID(change), IsOpen: true}
	for _, apply := range opts {
		apply(&d)
	}
	c, err := g.store.WriteCommit(d)
	require.NoError(g.t, err)
	return c
}

func (g *graph) view(checkout *store.Commit, heads ...*store.Commit) *view.ReadonlyView {
	data := model.ViewDescriptor{Checkout: checkout.ID()}
	for _, h := range heads {
		data.HeadIDs = append(data.HeadIDs, h.ID())
	}
	op, err := g.opLog.Append(data, model.OperationDescriptor{StartTime: model.Now()})
	require.NoError(g.t, err)
	return view.NewReadonlyView(g.store, g.opLog, op, nil)
}

func TestCompute(t *testing.T) {
	g := newGraph(t)

	a := g.commit("a", parents(g.root))
	b := g.commit("b", parents(a))
	a2 := g.commit("", rewrites(a), description("amended"))
	c := g.commit("c", parents(g.root), pruned)
	d := g.commit("d", parents(c))
	a3 := g.commit("", rewrites(a), description("other amend"))

	v := g.view(a2, b, a2, d, a3)
	state, err := Compute(g.store, v)
	require.NoError(t, err)

	assert.True(t, state.IsObsolete(a.ID()))
	assert.False(t, state.IsObsolete(a2.ID()))
	assert.ElementsMatch(t, []model.CommitID{a2.ID(), a3.ID()}, state.Successors(a.ID()))
	assert.Empty(t, state.Successors(b.ID()))

	assert.True(t, state.IsOrphan(b.ID()), "child of an obsolete commit")
	assert.True(t, state.IsOrphan(d.ID()), "child of a pruned commit")
	assert.False(t, state.IsOrphan(c.ID()), "pruned commits are not orphans")
	assert.False(t, state.IsOrphan(a2.ID()))

	assert.True(t, state.IsDivergent("a"))
	assert.False(t, state.IsDivergent("b"))

	assert.ElementsMatch(t, []model.CommitID{a2.ID(), a3.ID()}, state.NewSuccessors(a.ID()))
	assert.Equal(t, []model.CommitID{b.ID()}, state.NewSuccessors(b.ID()))
	assert.Empty(t, state.NewSuccessors(c.ID()))
}

func TestOrphanTransitive(t *testing.T) {
	g := newGraph(t)
	a := g.commit("a", parents(g.root))
	b := g.commit("b", parents(a))
	c := g.commit("c", parents(b))
	a2 := g.commit("", rewrites(a))

	state, err := Compute(g.store, g.view(a2, c, a2))
	require.NoError(t, err)
	assert.True(t, state.IsOrphan(b.ID()))
	assert.True(t, state.IsOrphan(c.ID()), "descendant of an orphan")
	assert.False(t, state.IsDivergent("a"))
}

func TestComputeMissingCommit(t *testing.T) {
	g := newGraph(t)
	op, err := g.opLog.Append(model.ViewDescriptor{HeadIDs: []model.CommitID{"missing"}, Checkout: "missing"},
		model.OperationDescriptor{StartTime: model.Now()})
	require.NoError(t, err)

	_, err = Compute(g.store, view.NewReadonlyView(g.store, g.opLog, op, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNotFound))
}

func TestMutableEvolution(t *testing.T) {
	g := newGraph(t)
	a := g.commit("a", parents(g.root))
	base := g.view(a, a)

	readonly, err := NewReadonly(g.store, base)
	require.NoError(t, err)
	obsolete, err := readonly.IsObsolete(a.ID())
	require.NoError(t, err)
	assert.False(t, obsolete)

	mutableView := base.StartModification()
	mutable := readonly.StartModification()

	// the readonly state is reused for the initial version
	obsolete, err = mutable.Bind(mutableView).IsObsolete(a.ID())
	require.NoError(t, err)
	assert.False(t, obsolete)
	assert.Equal(t, 0, mutable.computations)

	a2 := g.commit("", rewrites(a))
	mutableView.AddHead(a2)

	// a version change is detected even without explicit invalidation
	obsolete, err = mutable.Bind(mutableView).IsObsolete(a.ID())
	require.NoError(t, err)
	assert.True(t, obsolete)
	assert.Equal(t, 1, mutable.computations)

	// cached
	successors, err := mutable.Bind(mutableView).Successors(a.ID())
	require.NoError(t, err)
	assert.Equal(t, []model.CommitID{a2.ID()}, successors)
	assert.Equal(t, 1, mutable.computations)

	mutable.Invalidate()
	orphan, err := mutable.Bind(mutableView).IsOrphan(a2.ID())
	require.NoError(t, err)
	assert.False(t, orphan)
	assert.Equal(t, 2, mutable.computations)

	divergent, err := mutable.Bind(mutableView).IsDivergent("a")
	require.NoError(t, err)
	assert.False(t, divergent)

	newSuccessors, err := mutable.Bind(mutableView).NewSuccessors(a.ID())
	require.NoError(t, err)
	assert.Equal(t, []model.CommitID{a2.ID()}, newSuccessors)

	// the readonly evolution is left untouched
	obsolete, err = readonly.IsObsolete(a.ID())
	require.NoError(t, err)
	assert.False(t, obsolete)
}
