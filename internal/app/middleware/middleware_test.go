package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/queries"
	"roomfront/internal/domain/auth"
)

type blockResult struct {
	Dates []string `json:"dates"`
}

type blockCommand struct {
	Room string
	Idem string
}

func (blockCommand) Key() string { return "test.block" }
func (c blockCommand) IdempotencyKey() string { return c.Idem }
func (blockCommand) ResultPrototype() any { return &blockResult{} }
func (blockCommand) Access() auth.Access { return auth.AccessHost }
func (c blockCommand) Validate() error {
	if c.Room == "" {
		return errors.New("room required")
	}
	return nil
}

type lookupQuery struct{}

func (lookupQuery) Key() string { return "test.lookup" }
func (lookupQuery) Access() auth.Access { return auth.AccessMember }

type mapStore struct {
	mu   sync.Mutex
	recs map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

func hostContext(sessionID string) context.Context {
	return auth.ContextWithSession(context.Background(), auth.Session{ID: sessionID, UserID: "u1", IsHost: true, HostMode: true})
}

func newBlockBus(calls *int, fail *bool) (commands.Bus, *mapStore) {
	base := commands.NewInMemoryBus()
	commands.Register[blockCommand, *blockResult](base, commands.HandlerFunc[blockCommand, *blockResult](
		func(context.Context, blockCommand) (*blockResult, error) {
			*calls++
			if *fail {
				return nil, errors.New("backend down")
			}
			return &blockResult{Dates: []string{"2025-07-13"}}, nil
		}))
	store := &mapStore{recs: map[string]IdempotencyRecord{}}
	bus := ChainCommands(base,
		Authorization(SessionAuthorizer{}),
		Validation(MessageValidator{}),
		Idempotency(store, nil),
	)
	return bus, store
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	calls, fail := 0, false
	bus, _ := newBlockBus(&calls, &fail)
	ctx := hostContext("s1")

	first, err := commands.Dispatch[blockCommand, *blockResult](ctx, bus, blockCommand{Room: "r1", Idem: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[blockCommand, *blockResult](ctx, bus, blockCommand{Room: "r1", Idem: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestIdempotencyKeysAreScopedToSession(t *testing.T) {
	calls, fail := 0, false
	bus, store := newBlockBus(&calls, &fail)

	_, err := commands.Dispatch[blockCommand, *blockResult](hostContext("s1"), bus, blockCommand{Room: "r1", Idem: "k1"})
	require.NoError(t, err)
	_, err = commands.Dispatch[blockCommand, *blockResult](hostContext("s2"), bus, blockCommand{Room: "r1", Idem: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Contains(t, store.recs, "s1:test.block:k1")
}

func TestIdempotencyDoesNotRecordFailures(t *testing.T) {
	calls, fail := 0, true
	bus, store := newBlockBus(&calls, &fail)
	ctx := hostContext("s1")

	_, err := commands.Dispatch[blockCommand, *blockResult](ctx, bus, blockCommand{Room: "r1", Idem: "k1"})
	require.Error(t, err)
	assert.Empty(t, store.recs)

	fail = false
	_, err = commands.Dispatch[blockCommand, *blockResult](ctx, bus, blockCommand{Room: "r1", Idem: "k1"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAuthorizationAndValidationRunBeforeHandler(t *testing.T) {
	calls, fail := 0, false
	bus, _ := newBlockBus(&calls, &fail)

	_, err := commands.Dispatch[blockCommand, *blockResult](context.Background(), bus, blockCommand{Room: "r1"})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	guest := auth.ContextWithSession(context.Background(), auth.Session{ID: "s1", UserID: "u1"})
	_, err = commands.Dispatch[blockCommand, *blockResult](guest, bus, blockCommand{Room: "r1"})
	assert.ErrorIs(t, err, auth.ErrHostModeRequired)

	_, err = commands.Dispatch[blockCommand, *blockResult](hostContext("s1"), bus, blockCommand{})
	assert.EqualError(t, err, "room required")
	assert.Zero(t, calls)
}

func TestQueryAuthorization(t *testing.T) {
	base := queries.NewInMemoryBus()
	queries.Register[lookupQuery, string](base, queries.HandlerFunc[lookupQuery, string](
		func(context.Context, lookupQuery) (string, error) { return "ok", nil }))
	bus := ChainQueries(base, QueryAuthorization(SessionAuthorizer{}), QueryValidation(MessageValidator{}))

	_, err := queries.Ask[lookupQuery, string](context.Background(), bus, lookupQuery{})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	out, err := queries.Ask[lookupQuery, string](hostContext("s1"), bus, lookupQuery{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
