package state

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/despensa/internal/api"
)

type widget struct {
	ID   int64
	Name string
	Tags []string
}

func (w widget) EntityID() int64 { return w.ID }

type widgetPayload struct{ Name string }

// scriptedResource answers from an in-memory slice and fails on demand.
type scriptedResource struct {
	items  []widget
	nextID int64
	err    error
	calls  int
}

func (r *scriptedResource) List(context.Context) ([]widget, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return append([]widget(nil), r.items...), nil
}

func (r *scriptedResource) Create(_ context.Context, p widgetPayload) (widget, error) {
	r.calls++
	if r.err != nil {
		return widget{}, r.err
	}
	r.nextID++
	w := widget{ID: r.nextID, Name: p.Name}
	r.items = append(r.items, w)
	return w, nil
}

func (r *scriptedResource) Update(_ context.Context, id int64, p widgetPayload) (widget, error) {
	r.calls++
	if r.err != nil {
		return widget{}, r.err
	}
	return widget{ID: id, Name: p.Name}, nil
}

func (r *scriptedResource) Delete(context.Context, int64) error {
	r.calls++
	return r.err
}

func newWidgetStore(res *scriptedResource) *Store[widget, widgetPayload] {
	return New(Config[widget, widgetPayload]{
		Name:     "widgets",
		Resource: res,
		Messages: Messages{Fetch: "Falha ao buscar widgets", Delete: "Erro ao deletar widget"},
		Clone: func(w widget) widget {
			w.Tags = append([]string(nil), w.Tags...)
			return w
		},
	})
}

func TestStore_InitialSnapshot(t *testing.T) {
	s := newWidgetStore(&scriptedResource{})
	snap := s.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Error)
	assert.Equal(t, "widgets", s.Name())
}

func TestStore_FetchAllReplacesItems(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	s := newWidgetStore(res)

	require.NoError(t, s.FetchAll(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Equal(t, res.items, snap.Items)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.False(t, snap.LastFetched.IsZero())

	// A second fetch with an unchanged backend yields the same items.
	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, snap.Items, s.Snapshot().Items)
	assert.Equal(t, uint64(2), s.Snapshot().Generation)
}

func TestStore_FetchFailureKeepsItems(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Name: "a"}}}
	s := newWidgetStore(res)
	require.NoError(t, s.FetchAll(context.Background()))

	res.err = &api.Error{Kind: api.KindNetwork, Err: errors.New("connection refused")}
	err := s.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Falha ao buscar widgets", err.Error())

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "Falha ao buscar widgets", snap.Error)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.False(t, snap.IsOffline())

	_ = s.FetchAll(context.Background())
	assert.True(t, s.Snapshot().IsOffline())

	res.err = nil
	require.NoError(t, s.FetchAll(context.Background()))
	snap = s.Snapshot()
	assert.Equal(t, StatusSucceeded, snap.Status)
	assert.Empty(t, snap.Error)
	assert.Zero(t, snap.ConsecutiveFailures)
}

func TestStore_FetchStatusTransitions(t *testing.T) {
	res := &scriptedResource{}
	s := newWidgetStore(res)
	ch, cancel := s.Subscribe()
	defer cancel()

	var seen []Status
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch {
			st := s.Snapshot().Status
			seen = append(seen, st)
			if st == StatusSucceeded {
				return
			}
		}
	}()
	require.NoError(t, s.FetchAll(context.Background()))
	<-done
	assert.Equal(t, StatusSucceeded, seen[len(seen)-1])
}

func TestStore_CreateThenFetch(t *testing.T) {
	res := &scriptedResource{}
	s := newWidgetStore(res)
	ctx := context.Background()

	created, err := s.Create(ctx, widgetPayload{Name: "novo"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, ok := s.Find(created.ID)
	require.True(t, ok)
	assert.Equal(t, "novo", got.Name)

	require.NoError(t, s.FetchAll(ctx))
	_, ok = s.Find(created.ID)
	assert.True(t, ok)
}

func TestStore_FailedMutationsLeaveStateUntouched(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Name: "a"}}}
	s := newWidgetStore(res)
	ctx := context.Background()
	require.NoError(t, s.FetchAll(ctx))
	before := s.Snapshot()

	res.err = &api.Error{Kind: api.KindServer, Status: 500}
	_, err := s.Create(ctx, widgetPayload{Name: "x"})
	assert.Equal(t, genericFailure, err.Error())
	_, err = s.Update(ctx, 1, widgetPayload{Name: "x"})
	assert.Error(t, err)

	res.err = &api.Error{Kind: api.KindReferential, Status: 409, Message: "widget em uso"}
	err = s.Delete(ctx, 1)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "widget em uso", opErr.Message)
	assert.Equal(t, "delete", opErr.Op)
	assert.True(t, api.IsReferential(err))

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_DeleteFallbackMessage(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1}}}
	s := newWidgetStore(res)
	require.NoError(t, s.FetchAll(context.Background()))

	res.err = &api.Error{Kind: api.KindServer, Status: 500}
	err := s.Delete(context.Background(), 1)
	assert.Equal(t, "Erro ao deletar widget", err.Error())
}

func TestStore_UpdateAndDeleteInPlace(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "c"}}}
	s := newWidgetStore(res)
	ctx := context.Background()
	require.NoError(t, s.FetchAll(ctx))

	_, err := s.Update(ctx, 2, widgetPayload{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, 1))

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, widget{ID: 2, Name: "B"}, snap.Items[0])
	assert.Equal(t, widget{ID: 3, Name: "c"}, snap.Items[1])
}

func TestStore_MissingIDIsNoOp(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Name: "a"}}}
	s := newWidgetStore(res)
	ctx := context.Background()
	require.NoError(t, s.FetchAll(ctx))
	before := s.Snapshot()

	updated, err := s.Update(ctx, 42, widgetPayload{Name: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.ID)
	require.NoError(t, s.Delete(ctx, 42))

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_SnapshotsDoNotAlias(t *testing.T) {
	res := &scriptedResource{items: []widget{{ID: 1, Tags: []string{"x"}}}}
	s := newWidgetStore(res)
	require.NoError(t, s.FetchAll(context.Background()))

	snap := s.Snapshot()
	snap.Items[0].Tags[0] = "mutated"
	snap.Items[0].Name = "mutated"

	got, _ := s.Find(1)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.Empty(t, got.Name)
}

func TestStore_SubscribeCoalesces(t *testing.T) {
	res := &scriptedResource{}
	s := newWidgetStore(res)
	ch, cancel := s.Subscribe()

	for i := range 5 {
		_, err := s.Create(context.Background(), widgetPayload{Name: fmt.Sprint(i)})
		require.NoError(t, err)
	}
	assert.Len(t, ch, 1)
	<-ch

	cancel()
	cancel()
	_, err := s.Create(context.Background(), widgetPayload{Name: "late"})
	require.NoError(t, err)
	assert.Empty(t, ch)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
