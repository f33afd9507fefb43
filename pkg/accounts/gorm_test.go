package accounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvtuan/mmo-engine/pkg/core"
)

func newTestStore(t *testing.T, opts ...Option) *GormStore {
	t.Helper()
	s, err := Open(":memory:", opts...)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAccount(platform, username string) *core.Account {
	return &core.Account{
		Platform: platform,
		Username: username,
		Password: "secret",
		Email:    username + "@example.com",
	}
}

// eventSink records emitted events for assertions.
type eventSink struct {
	mu     sync.Mutex
	events []core.Event
}

func (s *eventSink) Emit(e core.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *eventSink) count(match func(core.Event) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if match(e) {
			n++
		}
	}
	return n
}

func TestAdd_AssignsDefaults(t *testing.T) {
	s := newTestStore(t)
	acc := testAccount("swagbucks", "alice")

	ok := s.Add(context.Background(), acc)
	require.True(t, ok)

	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, core.StatusActive, acc.Status)
	assert.True(t, acc.IsActive)
}

func TestAdd_EmitsAccountAdded(t *testing.T) {
	sink := &eventSink{}
	s := newTestStore(t, WithEmitter(sink))

	require.True(t, s.Add(context.Background(), testAccount("swagbucks", "alice")))

	added := sink.count(func(e core.Event) bool {
		_, ok := e.(*core.AccountAdded)
		return ok
	})
	assert.Equal(t, 1, added)
}

func TestAdd_DuplicateReportsFalseWithoutCorruptingReads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.True(t, s.Add(ctx, testAccount("swagbucks", "alice")))

	// same (platform, username) violates the unique index
	dup := testAccount("swagbucks", "alice")
	assert.False(t, s.Add(ctx, dup))

	// the failed write leaves the store usable
	assert.Equal(t, 1, s.CountTotal(ctx))
	assert.Len(t, s.List(ctx, ""), 1)
}

func TestList_PlatformFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.True(t, s.Add(ctx, testAccount("swagbucks", "alice")))
	require.True(t, s.Add(ctx, testAccount("ysense", "bob")))
	require.True(t, s.Add(ctx, testAccount("swagbucks", "carol")))

	all := s.List(ctx, "")
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username, "insertion order is stable")

	sb := s.List(ctx, "swagbucks")
	require.Len(t, sb, 2)
	for _, a := range sb {
		assert.Equal(t, "swagbucks", a.Platform)
	}
}

func TestUpdate_MatchedRow(t *testing.T) {
	sink := &eventSink{}
	s := newTestStore(t, WithEmitter(sink))
	ctx := context.Background()

	acc := testAccount("swagbucks", "alice")
	require.True(t, s.Add(ctx, acc))

	now := time.Now().UTC().Truncate(time.Second)
	acc.Status = core.StatusSuspended
	acc.LastLogin = &now
	acc.Extra = core.ExtraData{"points": core.Number(120)}

	assert.True(t, s.Update(ctx, acc))

	got := s.List(ctx, "swagbucks")
	require.Len(t, got, 1)
	assert.Equal(t, core.StatusSuspended, got[0].Status)
	require.NotNil(t, got[0].LastLogin)
	assert.Equal(t, now.Unix(), got[0].LastLogin.Unix())
	assert.Equal(t, core.Number(120), got[0].Extra["points"])
}

func TestUpdate_NoMatchReportsFalse(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.Update(context.Background(), testAccount("swagbucks", "ghost")))
}

func TestSoftDelete_ExcludesFromReads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc := testAccount("swagbucks", "alice")
	require.True(t, s.Add(ctx, acc))
	require.True(t, s.Add(ctx, testAccount("swagbucks", "bob")))

	assert.True(t, s.SoftDelete(ctx, acc.Email, "swagbucks"))

	assert.Equal(t, 1, s.CountTotal(ctx))
	got := s.List(ctx, "")
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Username)

	// second delete of the same record matches nothing
	assert.False(t, s.SoftDelete(ctx, acc.Email, "swagbucks"))
}

func TestCountActive_ByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testAccount("swagbucks", "alice")
	require.True(t, s.Add(ctx, a))
	require.True(t, s.Add(ctx, testAccount("swagbucks", "bob")))

	a.Status = core.StatusBanned
	require.True(t, s.Update(ctx, a))

	assert.Equal(t, 2, s.CountTotal(ctx))
	assert.Equal(t, 1, s.CountActive(ctx))
}

func TestConnected_FalseAfterClose(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	assert.True(t, s.Connected(context.Background()))

	require.NoError(t, s.Close())
	assert.False(t, s.Connected(context.Background()))

	// close is idempotent
	assert.NoError(t, s.Close())

	err = s.Migrate(context.Background())
	assert.ErrorIs(t, err, core.ErrStoreClosed)
}

func TestStoredProxy_SaveAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &StoredProxy{Host: "p1.example.com", Port: 8080, IsActive: true}
	require.True(t, s.SaveProxy(ctx, p))
	assert.NotEmpty(t, p.ID)

	require.True(t, s.SaveProxy(ctx, &StoredProxy{Host: "p2.example.com", Port: 8080, IsActive: false}))

	got := s.ListProxies(ctx)
	require.Len(t, got, 1, "inactive records are excluded")
	assert.Equal(t, "p1.example.com", got[0].Host)
}
