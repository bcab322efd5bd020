package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatRepo enforces the one-chat-per-pair constraint the way the
// private_chat_pairs primary key does.
type fakeChatRepo struct {
	mu     sync.Mutex
	nextID int64
	pairs  map[[2]int64]int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{pairs: map[[2]int64]int64{}}
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func (f *fakeChatRepo) FindPrivateChat(_ context.Context, userA, userB int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.pairs[pairKey(userA, userB)]; ok {
		return id, nil
	}
	return 0, pgx.ErrNoRows
}

func (f *fakeChatRepo) CreatePrivateChat(_ context.Context, userA, userB int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey(userA, userB)
	if _, ok := f.pairs[key]; ok {
		return 0, &pgconn.PgError{Code: "23505", ConstraintName: "private_chat_pairs_pkey"}
	}
	f.nextID++
	f.pairs[key] = f.nextID
	return f.nextID, nil
}

// contendedChatRepo forces the first N reads to miss, so every caller
// falls into the create path and all but one lose the constraint race.
type contendedChatRepo struct {
	*fakeChatRepo
	forcedMisses int32
}

func (r *contendedChatRepo) FindPrivateChat(ctx context.Context, userA, userB int64) (int64, error) {
	if atomic.AddInt32(&r.forcedMisses, -1) >= 0 {
		return 0, pgx.ErrNoRows
	}
	return r.fakeChatRepo.FindPrivateChat(ctx, userA, userB)
}

func seededUsers(t *testing.T, usernames ...string) *fakeUserRepo {
	t.Helper()
	repo := newFakeUserRepo()
	for _, username := range usernames {
		_, err := repo.CreateUser(context.Background(), username, "digest")
		require.NoError(t, err)
	}
	return repo
}

func TestResolvePrivateChatCreatesOnFirstCall(t *testing.T) {
	users := seededUsers(t, "alice", "bob")
	chats := newFakeChatRepo()
	svc := NewChatService(users, chats)

	chatID, err := svc.ResolvePrivateChat(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), chatID)
}

func TestResolvePrivateChatIsIdempotent(t *testing.T) {
	users := seededUsers(t, "alice", "bob")
	chats := newFakeChatRepo()
	svc := NewChatService(users, chats)
	ctx := context.Background()

	first, err := svc.ResolvePrivateChat(ctx, 1, "bob")
	require.NoError(t, err)
	second, err := svc.ResolvePrivateChat(ctx, 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The pair is unordered: bob asking for alice lands in the same chat.
	fromPeer, err := svc.ResolvePrivateChat(ctx, 2, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, fromPeer)

	assert.Len(t, chats.pairs, 1)
}

func TestResolvePrivateChatPeerNotFound(t *testing.T) {
	svc := NewChatService(seededUsers(t, "alice"), newFakeChatRepo())

	_, err := svc.ResolvePrivateChat(context.Background(), 1, "nobody")
	assert.ErrorIs(t, err, ErrPeerNotFound)
}

func TestResolvePrivateChatRejectsSelf(t *testing.T) {
	svc := NewChatService(seededUsers(t, "alice"), newFakeChatRepo())

	_, err := svc.ResolvePrivateChat(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestResolvePrivateChatRetriesAfterLostRace(t *testing.T) {
	users := seededUsers(t, "alice", "bob")
	chats := &contendedChatRepo{fakeChatRepo: newFakeChatRepo(), forcedMisses: 2}
	svc := NewChatService(users, chats)
	ctx := context.Background()

	winner, err := svc.ResolvePrivateChat(ctx, 1, "bob")
	require.NoError(t, err)

	// Second caller also misses its read, loses the insert, and must
	// settle on the winner's chat via the retry read.
	loser, err := svc.ResolvePrivateChat(ctx, 1, "bob")
	require.NoError(t, err)

	assert.Equal(t, winner, loser)
	assert.Len(t, chats.pairs, 1)
}

func TestResolvePrivateChatConcurrent(t *testing.T) {
	const callers = 20

	users := seededUsers(t, "alice", "bob")
	chats := &contendedChatRepo{fakeChatRepo: newFakeChatRepo(), forcedMisses: callers}
	svc := NewChatService(users, chats)

	var wg sync.WaitGroup
	results := make([]int64, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.ResolvePrivateChat(context.Background(), 1, "bob")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, results[0], results[i], "caller %d saw a different chat", i)
	}
	assert.Len(t, chats.pairs, 1, "exactly one chat may exist for the pair")
}
