package repo

import (
	"runtime"
	"testing"
	"time"

	"github.com/oneconcern/strata/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionAccessors(t *testing.T) {
	r := initRepo(t)
	before := time.Now()
	tx := r.StartTransaction("accessors")
	defer tx.Discard()

	assert.Equal(t, "accessors", tx.Description())
	assert.False(t, tx.StartTime().Before(before.Add(-time.Second)))
	assert.False(t, tx.IsClosed())
	assert.Equal(t, r, tx.BaseRepo())
	assert.Equal(t, r.Store(), tx.Store())
	assert.Equal(t, r.View().Checkout(), tx.AsRepo().View().Checkout())
	assert.Equal(t, r, tx.AsRepoMut().BaseRepo())
	assert.NotNil(t, tx.AsRepoMut().EvolutionMut())
}

func TestCloseTwicePanics(t *testing.T) {
	r := initRepo(t)

	tx := r.StartTransaction("committed")
	_, err := tx.Commit()
	require.NoError(t, err)
	assert.True(t, tx.IsClosed())
	assert.Panics(t, func() { _, _ = tx.Commit() })
	assert.Panics(t, func() { tx.Discard() })
	assert.Panics(t, func() { tx.SetCheckout("x") })
	assert.Panics(t, func() { _ = tx.Store() })

	tx = r.StartTransaction("discarded")
	tx.Discard()
	assert.Panics(t, func() { tx.Discard() })
	assert.Panics(t, func() { _, _ = tx.Commit() })
}

func TestRetainedMutableRepoFaults(t *testing.T) {
	r := initRepo(t)
	tx := r.StartTransaction("retained")
	retained := tx.AsRepoMut()
	evolutionHandle := tx.AsRepo()
	_, err := tx.Commit()
	require.NoError(t, err)

	assert.PanicsWithValue(t, "dev error: mutable repo used after its transaction was closed", func() { _ = retained.View() })
	assert.Panics(t, func() { _ = evolutionHandle.Evolution() })
	assert.Panics(t, func() { retained.SetCheckout("x") })
}

func TestLeakedTransactionIsReported(t *testing.T) {
	leaks := make(chan string, 10)
	r := initRepo(t, OnLeak(func(description string, _ time.Time) {
		leaks <- description
	}))

	func() {
		tx := r.StartTransaction("committed")
		_, err := tx.Commit()
		require.NoError(t, err)
		r.StartTransaction("discarded").Discard()
		_ = r.StartTransaction("leaked")
	}()

	deadline := time.After(10 * time.Second)
	for {
		runtime.GC()
		select {
		case description := <-leaks:
			assert.Equal(t, "leaked", description)
			runtime.GC()
			time.Sleep(50 * time.Millisecond)
			assert.Empty(t, leaks, "closed transactions are not reported")
			return
		case <-deadline:
			t.Fatal("a leaked transaction was not reported")
			return
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestIsolation(t *testing.T) {
	r := initRepo(t)
	s := r.Store()
	base := r.View().HeadIDs()

	tx1 := r.StartTransaction("one")
	tx2 := r.StartTransaction("two")
	defer tx2.Discard()

	c, err := ForOpenCommit(testSettings(), s, r.View().Checkout(), treeWith(t, s, "a.txt", "a\n")).WriteToTransaction(tx1)
	require.NoError(t, err)
	tx1.SetCheckout(c.ID())

	assert.True(t, tx1.AsRepo().View().HasHead(c.ID()))
	assert.Equal(t, c.ID(), tx1.AsRepo().View().Checkout())

	assert.False(t, tx2.AsRepo().View().HasHead(c.ID()))
	assert.Equal(t, base, tx2.AsRepo().View().HeadIDs())
	assert.Equal(t, base, r.View().HeadIDs())
	assert.NotEqual(t, c.ID(), r.View().Checkout())

	_, err = tx1.Commit()
	require.NoError(t, err)
	assert.False(t, tx2.AsRepo().View().HasHead(c.ID()), "a committed transaction does not leak into open ones")
	assert.Equal(t, base, r.View().HeadIDs())
}

func TestEvolutionInvalidation(t *testing.T) {
	r := initRepo(t)
	s := r.Store()
	us := testSettings()
	tx := r.StartTransaction("evolve")
	defer tx.Discard()

	working, err := s.GetCommit(r.View().Checkout())
	require.NoError(t, err)

	isObsolete := func() bool {
		obsolete, err := tx.AsRepo().Evolution().IsObsolete(working.ID())
		require.NoError(t, err)
		return obsolete
	}
	assert.False(t, isObsolete())

	// AddHead
	rewritten, err := s.WriteCommit(ForRewriteFrom(us, s, working).SetDescription("amended").Descriptor())
	require.NoError(t, err)
	tx.AddHead(rewritten)
	assert.True(t, isObsolete())

	// RemoveHead
	tx.RemoveHead(rewritten)
	assert.False(t, isObsolete())

	// SetView
	tx.SetView(model.ViewDescriptor{HeadIDs: []model.CommitID{rewritten.ID()}, Checkout: rewritten.ID()})
	assert.True(t, isObsolete())
	tx.SetView(model.ViewDescriptor{HeadIDs: []model.CommitID{working.ID()}, Checkout: working.ID()})
	assert.False(t, isObsolete())

	// WriteCommit goes through AddHead
	_, err = ForRewriteFrom(us, s, working).SetDescription("again").WriteToTransaction(tx)
	require.NoError(t, err)
	assert.True(t, isObsolete())

	// the base evolution is untouched
	obsolete, err := r.Evolution().IsObsolete(working.ID())
	require.NoError(t, err)
	assert.False(t, obsolete)
}

func TestSetCheckoutIsNotValidated(t *testing.T) {
	r := initRepo(t)
	tx := r.StartTransaction("unchecked")
	tx.SetCheckout("not-a-commit")
	assert.Equal(t, model.CommitID("not-a-commit"), tx.AsRepo().View().Checkout())

	_, err := tx.AsRepo().Evolution().IsObsolete("not-a-commit")
	require.Error(t, err, "readers catch the dangling checkout")
	tx.Discard()
}

func TestRoundTrip(t *testing.T) {
	r := initRepo(t)
	s := r.Store()
	us := testSettings()
	tx := r.StartTransaction("round trip")

	first, err := ForOpenCommit(us, s, r.View().Checkout(), treeWith(t, s, "a", "1\n")).WriteToTransaction(tx)
	require.NoError(t, err)
	second, err := ForOpenCommit(us, s, r.View().Checkout(), treeWith(t, s, "b", "2\n")).WriteToTransaction(tx)
	require.NoError(t, err)
	_, err = tx.CheckOut(us, second)
	require.NoError(t, err)
	tx.RemoveHead(first)

	heads := tx.AsRepo().View().HeadIDs()
	checkout := tx.AsRepo().View().Checkout()

	op, err := tx.Commit()
	require.NoError(t, err)
	assert.Equal(t, "round trip", op.Descriptor.Description)
	assert.True(t, op.Descriptor.StartTime.Equal(tx.StartTime()))
	assert.Equal(t, []model.OperationID{r.Operation().ID}, op.Descriptor.Parents)
	assert.Equal(t, heads, op.View.HeadIDs)
	assert.Equal(t, checkout, op.View.Checkout)

	replayed, err := r.LoadAt(op.ID)
	require.NoError(t, err)
	assert.Equal(t, heads, replayed.View().HeadIDs())
	assert.Equal(t, checkout, replayed.View().Checkout())
}
