package oplog

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/oneconcern/strata/pkg/cafs"
	"github.com/oneconcern/strata/pkg/dlogger"
	"github.com/oneconcern/strata/pkg/errors"
	"github.com/oneconcern/strata/pkg/model"
	"github.com/oneconcern/strata/pkg/oplog/status"
	"github.com/oneconcern/strata/pkg/storage"
	storagestatus "github.com/oneconcern/strata/pkg/storage/status"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

const (
	maxEntriesPerList = 1000
	maxConcurrency    = 64
	payloadSize       = 16
)

// Operation is a persisted operation, with the view it resulted in
type Operation struct {
	ID         model.OperationID
	Descriptor model.OperationDescriptor
	View       model.ViewDescriptor
}

// OpLog is the operation log of a repository
type OpLog struct {
	store          storage.Store
	maxConcurrency int
	hostname       string
	username       string
	contexter      func() context.Context
	l              *zap.Logger
}

// Option to the operation log
type Option func(o *OpLog)

// MaxConcurrency limits the number of parallel reads when listing operations
func MaxConcurrency(c int) Option {
	return func(o *OpLog) {
		if c > 0 {
			o.maxConcurrency = c
		}
	}
}

// Logger sets a logger for this operation log
func Logger(logger *zap.Logger) Option {
	return func(o *OpLog) {
		if logger != nil {
			o.l = logger
		}
	}
}

// Host records the host and user name on the operations written to the log, unless already set
func Host(hostname, username string) Option {
	return func(o *OpLog) {
		o.hostname = hostname
		o.username = username
	}
}

// Contexter sets the function producing a context for every storage call
func Contexter(fn func() context.Context) Option {
	return func(o *OpLog) {
		if fn != nil {
			o.contexter = fn
		}
	}
}

func defaultOpLog() *OpLog {
	logger, _ := dlogger.GetLogger(dlogger.LogLevelInfo)
	return &OpLog{
		maxConcurrency: maxConcurrency,
		l:              logger,
		contexter:      context.Background,
	}
}

// New builds an operation log on some store
func New(store storage.Store, options ...Option) *OpLog {
	o := defaultOpLog()
	for _, option := range options {
		option(o)
	}
	o.store = store
	return o
}

func (o *OpLog) String() string {
	return fmt.Sprintf("oplog(%v)", o.store)
}

// WriteView persists a view. Views are content addressed.
func (o *OpLog) WriteView(desc model.ViewDescriptor) (model.ViewID, error) {
	desc = desc.Clone()
	desc.Normalize()
	b, err := yaml.Marshal(desc)
	if err != nil {
		return "", status.ErrWriteView.Wrap(err)
	}
	id := model.ViewID(cafs.KeyFromContent(b).String())
	err = o.store.Put(o.contexter(), model.GetPathToView(id), bytes.NewReader(b), storage.NoOverWrite)
	if err != nil && !errors.Is(err, storagestatus.ErrExists) {
		return "", status.ErrWriteView.WrapWithLog(o.l, err, zap.String("view", string(id)))
	}
	return id, nil
}

// ReadView retrieves a view
func (o *OpLog) ReadView(id model.ViewID) (model.ViewDescriptor, error) {
	return o.readView(o.contexter(), id)
}

func (o *OpLog) readView(ctx context.Context, id model.ViewID) (model.ViewDescriptor, error) {
	var desc model.ViewDescriptor
	b, err := storage.ReadAll(ctx, o.store, model.GetPathToView(id))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return desc, status.ErrViewNotFound.Wrap(err)
		}
		return desc, err
	}
	key, err := cafs.ParseKey(string(id))
	if err != nil || !key.Verify(b) {
		return desc, status.ErrCorrupt.WrapMessage("view %s does not match its content", id)
	}
	if err = yaml.Unmarshal(b, &desc); err != nil {
		return desc, status.ErrCorrupt.Wrap(err)
	}
	return desc, nil
}

// newToken gets a token such that operation ids are K-sortable by start time.
//
// ksuid timestamps have a one second resolution: the payload starts with the nanoseconds
// of the start time, so operations started within the same second still sort chronologically.
func (o *OpLog) newToken(desc model.OperationDescriptor) (model.OperationID, error) {
	payload := make([]byte, payloadSize)
	binary.BigEndian.PutUint32(payload, uint32(desc.StartTime.Nanosecond()))
	if _, err := rand.Read(payload[4:]); err != nil {
		return "", status.ErrKSUID.Wrap(err)
	}
	k, err := ksuid.FromParts(desc.StartTime, payload)
	if err != nil {
		return "", status.ErrKSUID.Wrap(err)
	}
	o.l.Debug("generated token", zap.String("token", k.String()), zap.Time("startTime", desc.StartTime))
	return model.OperationID(k.String()), nil
}

func (o *OpLog) stamp(desc model.OperationDescriptor) model.OperationDescriptor {
	if desc.Hostname == "" {
		desc.Hostname = o.hostname
	}
	if desc.Username == "" {
		desc.Username = o.username
	}
	return desc
}

// Append writes a view and the operation resulting in this view, then makes this operation
// a head in place of its parents.
func (o *OpLog) Append(view model.ViewDescriptor, desc model.OperationDescriptor) (*Operation, error) {
	viewID, err := o.WriteView(view)
	if err != nil {
		return nil, err
	}
	desc = o.stamp(desc)
	desc.ViewID = viewID
	id, err := o.writeOperation(desc)
	if err != nil {
		return nil, err
	}
	if err = o.UpdateHeads(id, desc.Parents...); err != nil {
		return nil, err
	}
	view = view.Clone()
	view.Normalize()
	return &Operation{ID: id, Descriptor: desc, View: view}, nil
}

// WriteOperation appends an operation to the log. The operation does not become a head: see UpdateHeads.
func (o *OpLog) WriteOperation(desc model.OperationDescriptor) (model.OperationID, error) {
	return o.writeOperation(o.stamp(desc))
}

func (o *OpLog) writeOperation(desc model.OperationDescriptor) (model.OperationID, error) {
	id, err := o.newToken(desc)
	if err != nil {
		return "", err
	}
	b, err := yaml.Marshal(desc)
	if err != nil {
		return "", status.ErrWriteOperation.Wrap(err)
	}

	// should be a new entry
	err = o.store.Put(o.contexter(), model.GetPathToOperation(id), bytes.NewReader(b), storage.NoOverWrite)
	if err != nil {
		return "", status.ErrWriteOperation.WrapWithLog(o.l, err, zap.String("operation", string(id)))
	}
	o.l.Debug("write operation", zap.String("operation", string(id)), zap.String("description", desc.Description))
	return id, nil
}

// ReadOperation retrieves an operation descriptor
func (o *OpLog) ReadOperation(id model.OperationID) (model.OperationDescriptor, error) {
	return o.readOperation(o.contexter(), id)
}

func (o *OpLog) readOperation(ctx context.Context, id model.OperationID) (model.OperationDescriptor, error) {
	var desc model.OperationDescriptor
	b, err := storage.ReadAll(ctx, o.store, model.GetPathToOperation(id))
	if err != nil {
		if errors.Is(err, storagestatus.ErrNotExists) {
			return desc, status.ErrOperationNotFound.Wrap(err)
		}
		return desc, err
	}
	if err = yaml.Unmarshal(b, &desc); err != nil {
		return desc, status.ErrCorrupt.Wrap(err)
	}
	return desc, nil
}

// Resolve an operation together with its view
func (o *OpLog) Resolve(id model.OperationID) (*Operation, error) {
	desc, err := o.ReadOperation(id)
	if err != nil {
		return nil, err
	}
	view, err := o.ReadView(desc.ViewID)
	if err != nil {
		return nil, err
	}
	return &Operation{ID: id, Descriptor: desc, View: view}, nil
}

// Heads yields the current op heads, sorted
func (o *OpLog) Heads() ([]model.OperationID, error) {
	ctx := o.contexter()
	var (
		heads []model.OperationID
		token string
	)
	prefix := model.GetOpHeadsPrefix()
	for {
		keys, next, err := o.store.KeysPrefix(ctx, token, prefix, "", maxEntriesPerList)
		if err != nil {
			return nil, status.ErrHeads.WrapWithLog(o.l, err)
		}
		for _, key := range keys {
			heads = append(heads, model.OperationID(strings.TrimPrefix(key, prefix)))
		}
		if next == "" {
			break
		}
		token = next
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })
	return heads, nil
}

// UpdateHeads marks an operation as a new head, replacing the heads it was based upon
func (o *OpLog) UpdateHeads(newID model.OperationID, oldIDs ...model.OperationID) error {
	ctx := o.contexter()
	err := o.store.Put(ctx, model.GetPathToOpHead(newID), bytes.NewReader(nil), storage.OverWrite)
	if err != nil {
		return status.ErrHeads.WrapWithLog(o.l, err, zap.String("operation", string(newID)))
	}
	for _, old := range oldIDs {
		if old == newID {
			continue
		}
		err = o.store.Delete(ctx, model.GetPathToOpHead(old))
		if err != nil && !errors.Is(err, storagestatus.ErrNotExists) {
			return status.ErrHeads.WrapWithLog(o.l, err, zap.String("operation", string(old)))
		}
	}
	return nil
}

// ListTokens lists operation ids starting from some token. If fromToken is empty, listing starts from the beginning.
// Use the returned next token to paginate to the next set of ids. An empty next token means the list is complete.
func (o *OpLog) ListTokens(ctx context.Context, fromToken string, max int) ([]model.OperationID, string, error) {
	if max <= 0 {
		return nil, "", status.ErrMaxCount.WrapWithLog(o.l, nil, zap.Int("max count", max), zap.String("token", fromToken))
	}
	if max > maxEntriesPerList {
		max = maxEntriesPerList
	}
	var pageToken string
	if fromToken != "" {
		if _, err := ksuid.Parse(fromToken); err != nil {
			return nil, "", status.ErrInvalidToken.Wrap(err)
		}
		pageToken = model.GetPathToOperation(model.OperationID(fromToken))
	}

	prefix := model.GetOperationsPrefix()
	keys, next, err := o.store.KeysPrefix(ctx, pageToken, prefix, "", max)
	if err != nil {
		return nil, "", status.ErrGetTokens.WrapWithLog(o.l, err, zap.String("token", fromToken))
	}
	tokens := make([]model.OperationID, 0, len(keys))
	for _, key := range keys {
		tokens = append(tokens, model.OperationID(strings.TrimPrefix(key, prefix)))
	}
	return tokens, strings.TrimPrefix(next, prefix), nil
}

// ListOperations reads a page of operations in chronological order, with their views.
// Operations are read in parallel.
func (o *OpLog) ListOperations(ctx context.Context, fromToken string, max int) ([]Operation, string, error) {
	tokens, next, err := o.ListTokens(ctx, fromToken, max)
	if err != nil {
		return nil, "", err
	}
	if len(tokens) == 0 {
		return nil, next, nil
	}

	// ListOperations spawns parallel reads. The responses are collected by one routine
	// which orders them in a radix tree.
	responses := make(chan *Operation)
	collected := make(chan *iradix.Tree, 1)
	go o.collectParallelResponses(responses, collected)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)
	for _, token := range tokens {
		id := token
		g.Go(func() error {
			op, err := o.read(gctx, id)
			if err != nil {
				return err
			}
			select {
			case responses <- op:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err = g.Wait()
	close(responses)
	tree := <-collected
	if err != nil {
		return nil, "", err
	}

	if tree.Len() != len(tokens) {
		panic(fmt.Sprintf("dev error: received count different than the list of tokens: %d count: %d", tree.Len(), len(tokens)))
	}
	operations := make([]Operation, 0, tree.Len())
	iterator := tree.Root().Iterator()
	for {
		_, v, ok := iterator.Next()
		if !ok {
			break
		}
		operations = append(operations, *v.(*Operation))
	}
	return operations, next, nil
}

func (o *OpLog) read(ctx context.Context, id model.OperationID) (*Operation, error) {
	o.l.Debug("read operation", zap.String("operation", string(id)))
	desc, err := o.readOperation(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := o.readView(ctx, desc.ViewID)
	if err != nil {
		return nil, err
	}
	return &Operation{ID: id, Descriptor: desc, View: view}, nil
}

// sortKey orders operations by start time, then by id
func sortKey(op *Operation) []byte {
	return []byte(op.Descriptor.StartTime.UTC().Format("20060102T150405.000000000") + "/" + string(op.ID))
}

func (o *OpLog) collectParallelResponses(responses <-chan *Operation, collected chan<- *iradix.Tree) {
	txn := iradix.New().Txn()
	for op := range responses {
		if _, updated := txn.Insert(sortKey(op), op); updated {
			panic(fmt.Sprintf("dev error: received more than one response for operation: %s", op.ID))
		}
	}
	collected <- txn.Commit()
}
