package sync

import (
	"context"
	"encoding/json"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/kucun-next/internal/constants"
)

type fakeStore struct {
	mu   stdsync.Mutex
	data map[string]map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]map[string]json.RawMessage)}
}

func (s *fakeStore) set(name string, records map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	collection := make(map[string]json.RawMessage, len(records))
	for id, payload := range records {
		collection[id] = json.RawMessage(payload)
	}
	s.data[name] = collection
}

func (s *fakeStore) ids(name string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]bool)
	for id := range s.data[name] {
		ids[id] = true
	}
	return ids
}

func (s *fakeStore) SnapshotCollection(name string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]json.RawMessage, len(s.data[name]))
	for id, record := range s.data[name] {
		snapshot[id] = record
	}
	return snapshot, nil
}

func (s *fakeStore) ReplaceCollection(name string, records map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	collection := make(map[string]json.RawMessage, len(records))
	for id, record := range records {
		collection[id] = record
	}
	s.data[name] = collection
	return nil
}

type fakeMeta struct {
	mu             stdsync.Mutex
	lastSync       string
	offlineChanges int
}

func (m *fakeMeta) SetLastSync(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSync = at.Format(time.RFC3339)
	return nil
}

func (m *fakeMeta) LastSync() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSync, nil
}

func (m *fakeMeta) IncrementOfflineChanges() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offlineChanges++
	return nil
}

func (m *fakeMeta) ResetOfflineChanges() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offlineChanges = 0
	return nil
}

func (m *fakeMeta) OfflineChanges() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offlineChanges, nil
}

type fakeMirrorClient struct {
	mu       stdsync.Mutex
	data     map[string]map[string]json.RawMessage
	handlers map[string]func(map[string]json.RawMessage)
	canceled int
	readErr  error
}

func newFakeMirrorClient() *fakeMirrorClient {
	return &fakeMirrorClient{
		data:     make(map[string]map[string]json.RawMessage),
		handlers: make(map[string]func(map[string]json.RawMessage)),
	}
}

func (c *fakeMirrorClient) set(name string, records map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	collection := make(map[string]json.RawMessage, len(records))
	for id, payload := range records {
		collection[id] = json.RawMessage(payload)
	}
	c.data[name] = collection
}

func (c *fakeMirrorClient) ids(name string) map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make(map[string]bool)
	for id := range c.data[name] {
		ids[id] = true
	}
	return ids
}

func (c *fakeMirrorClient) publish(name string, records map[string]string) {
	c.set(name, records)
	c.mu.Lock()
	handler := c.handlers[name]
	snapshot := make(map[string]json.RawMessage, len(c.data[name]))
	for id, record := range c.data[name] {
		snapshot[id] = record
	}
	c.mu.Unlock()
	if handler != nil {
		handler(snapshot)
	}
}

func (c *fakeMirrorClient) ReadCollection(_ context.Context, name string) (map[string]json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	snapshot := make(map[string]json.RawMessage, len(c.data[name]))
	for id, record := range c.data[name] {
		snapshot[id] = record
	}
	return snapshot, nil
}

func (c *fakeMirrorClient) WriteRecord(_ context.Context, name, id string, record json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[name] == nil {
		c.data[name] = make(map[string]json.RawMessage)
	}
	c.data[name][id] = record
	return nil
}

func (c *fakeMirrorClient) DeleteRecord(_ context.Context, name, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data[name], id)
	return nil
}

func (c *fakeMirrorClient) Subscribe(_ context.Context, name string, onChange func(map[string]json.RawMessage)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = onChange
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, name)
		c.canceled++
	}, nil
}

func (c *fakeMirrorClient) Ping(_ context.Context) error {
	return nil
}

func (c *fakeMirrorClient) canceledCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}

type fakeEnqueuer struct {
	mu    stdsync.Mutex
	calls int
}

func (e *fakeEnqueuer) EnqueueSyncRun() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return nil
}

func (e *fakeEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func openGate() *Gate {
	gate := NewGate()
	gate.SetOnline(true)
	gate.SetAuthenticated(true)
	return gate
}

func TestReconcileUnavailableWhenGateClosed(t *testing.T) {
	gate := NewGate()
	r := NewReconciler(gate, newFakeMirrorClient(), newFakeStore(), &fakeMeta{}, nil)

	if err := r.Reconcile(context.Background()); !errors.Is(err, ErrSyncUnavailable) {
		t.Fatalf("want ErrSyncUnavailable got %v", err)
	}
	if r.State() != StateIdle {
		t.Fatalf("state want idle got %s", r.State())
	}
}

func TestReconcilePullReplacesLocalWhenRemoteHasData(t *testing.T) {
	client := newFakeMirrorClient()
	store := newFakeStore()
	meta := &fakeMeta{offlineChanges: 4}
	gate := openGate()
	r := NewReconciler(gate, client, store, meta, nil)

	store.set(constants.CollectionClothes, map[string]string{
		"1": `{"id":1}`,
		"2": `{"id":2}`,
	})
	client.set(constants.CollectionClothes, map[string]string{
		"2": `{"id":2}`,
		"3": `{"id":3}`,
	})

	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	// 远端非空：本地被整体覆盖为远端内容，本地原有的 1 不再保留
	localIDs := store.ids(constants.CollectionClothes)
	if len(localIDs) != 2 || !localIDs["2"] || !localIDs["3"] {
		t.Fatalf("local ids want {2,3} got %v", localIDs)
	}
	remoteIDs := client.ids(constants.CollectionClothes)
	if len(remoteIDs) != 2 || !remoteIDs["2"] || !remoteIDs["3"] {
		t.Fatalf("remote ids want {2,3} got %v", remoteIDs)
	}

	if r.State() != StateSubscribed {
		t.Fatalf("state want subscribed got %s", r.State())
	}
	if last, _ := meta.LastSync(); last == "" {
		t.Fatalf("last sync should be recorded")
	}
	if pending, _ := meta.OfflineChanges(); pending != 0 {
		t.Fatalf("offline changes want 0 got %d", pending)
	}
}

func TestReconcileKeepsLocalWhenRemoteEmpty(t *testing.T) {
	client := newFakeMirrorClient()
	store := newFakeStore()
	r := NewReconciler(openGate(), client, store, &fakeMeta{}, nil)

	store.set(constants.CollectionClothes, map[string]string{"1": `{"id":1}`})

	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	// 远端为空：本地保留，并被推送到远端
	if ids := store.ids(constants.CollectionClothes); !ids["1"] {
		t.Fatalf("local record lost: %v", ids)
	}
	if ids := client.ids(constants.CollectionClothes); !ids["1"] {
		t.Fatalf("remote should have pushed record: %v", ids)
	}
}

func TestPushRemovesRemoteStragglers(t *testing.T) {
	client := newFakeMirrorClient()
	store := newFakeStore()
	r := NewReconciler(openGate(), client, store, &fakeMeta{}, nil)

	store.set(constants.CollectionClothes, map[string]string{"1": `{"id":1}`})
	client.set(constants.CollectionClothes, map[string]string{
		"1": `{"id":1}`,
		"9": `{"id":9}`,
	})

	if err := r.push(context.Background()); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	remoteIDs := client.ids(constants.CollectionClothes)
	if len(remoteIDs) != 1 || !remoteIDs["1"] {
		t.Fatalf("remote ids want {1} got %v", remoteIDs)
	}
}

func TestReconcileFailureRollsBackToIdle(t *testing.T) {
	client := newFakeMirrorClient()
	client.readErr = errors.New("boom")
	r := NewReconciler(openGate(), client, newFakeStore(), &fakeMeta{}, nil)

	err := r.Reconcile(context.Background())
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("want ErrSyncFailed got %v", err)
	}
	if r.State() != StateIdle {
		t.Fatalf("state want idle got %s", r.State())
	}
}

func TestGateCloseTearsDownSubscriptions(t *testing.T) {
	client := newFakeMirrorClient()
	gate := openGate()
	r := NewReconciler(gate, client, newFakeStore(), &fakeMeta{}, nil)

	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if r.State() != StateSubscribed {
		t.Fatalf("state want subscribed got %s", r.State())
	}

	gate.SetOnline(false)

	if r.State() != StateIdle {
		t.Fatalf("state want idle got %s", r.State())
	}
	if got := client.canceledCount(); got != len(constants.SyncedCollections) {
		t.Fatalf("canceled subscriptions want %d got %d", len(constants.SyncedCollections), got)
	}
}

func TestSubscriptionAppliesRemoteSnapshot(t *testing.T) {
	client := newFakeMirrorClient()
	store := newFakeStore()
	r := NewReconciler(openGate(), client, store, &fakeMeta{}, nil)

	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	client.publish(constants.CollectionClothes, map[string]string{"5": `{"id":5}`})

	if ids := store.ids(constants.CollectionClothes); !ids["5"] {
		t.Fatalf("subscription snapshot not applied: %v", ids)
	}

	// 空快照不覆盖本地
	client.publish(constants.CollectionInventory, map[string]string{})
	store.set(constants.CollectionInventory, map[string]string{"7": `{"id":7}`})
	client.publish(constants.CollectionInventory, map[string]string{})
	if ids := store.ids(constants.CollectionInventory); !ids["7"] {
		t.Fatalf("empty snapshot should not clear local: %v", ids)
	}
}

func TestMarkLocalChangeOfflineCountsPending(t *testing.T) {
	meta := &fakeMeta{}
	r := NewReconciler(NewGate(), newFakeMirrorClient(), newFakeStore(), meta, nil)

	r.MarkLocalChange()
	r.MarkLocalChange()

	if pending, _ := meta.OfflineChanges(); pending != 2 {
		t.Fatalf("offline changes want 2 got %d", pending)
	}
}

func TestMarkLocalChangeSubscribedEnqueuesRepush(t *testing.T) {
	client := newFakeMirrorClient()
	enqueuer := &fakeEnqueuer{}
	meta := &fakeMeta{}
	r := NewReconciler(openGate(), client, newFakeStore(), meta, enqueuer)

	if err := r.Reconcile(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	r.MarkLocalChange()

	if enqueuer.count() != 1 {
		t.Fatalf("enqueue calls want 1 got %d", enqueuer.count())
	}
	if pending, _ := meta.OfflineChanges(); pending != 0 {
		t.Fatalf("offline changes want 0 got %d", pending)
	}
}
