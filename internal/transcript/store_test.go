package transcript

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginAndEndSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.BeginSession(ctx, "/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "/dev/ttyUSB0", sessions[0].Device)
	assert.Equal(t, 115200, sessions[0].BaudRate)
	assert.Nil(t, sessions[0].EndedAt)

	require.NoError(t, store.EndSession(ctx, id))

	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndedAt)
	assert.False(t, sessions[0].EndedAt.Before(sessions[0].StartedAt))
}

func TestEndSessionTwiceKeepsFirstStamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.BeginSession(ctx, "/dev/ttyUSB0", 9600)
	require.NoError(t, err)
	require.NoError(t, store.EndSession(ctx, id))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	first := *sessions[0].EndedAt

	require.NoError(t, store.EndSession(ctx, id))

	sessions, err = store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, *sessions[0].EndedAt)
}

func TestEndUnknownSession(t *testing.T) {
	store := newTestStore(t)

	err := store.EndSession(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendAndEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.BeginSession(ctx, "/dev/ttyACM0", 115200)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, id, DirectionStatus, "connected"))
	require.NoError(t, store.Append(ctx, id, DirectionTX, "ATI"))
	require.NoError(t, store.Append(ctx, id, DirectionRX, "ATI\r\nOK"))

	entries, err := store.Entries(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, DirectionStatus, entries[0].Direction)
	assert.Equal(t, DirectionTX, entries[1].Direction)
	assert.Equal(t, "ATI", entries[1].Payload)
	assert.Equal(t, DirectionRX, entries[2].Direction)
	assert.Equal(t, "ATI\r\nOK", entries[2].Payload)

	// Entries come back in insertion order
	assert.Less(t, entries[0].Seq, entries[1].Seq)
	assert.Less(t, entries[1].Seq, entries[2].Seq)
	for _, entry := range entries {
		assert.Equal(t, id, entry.SessionID)
	}
}

func TestEntriesUnknownSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Entries(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.BeginSession(ctx, "/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	b, err := store.BeginSession(ctx, "/dev/ttyUSB1", 9600)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, a, DirectionTX, "AT+CSQ"))
	require.NoError(t, store.Append(ctx, b, DirectionTX, "AT+GMR"))

	entries, err := store.Entries(ctx, a)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AT+CSQ", entries[0].Payload)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := store.BeginSession(ctx, "/dev/ttyUSB0", 115200)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
}
