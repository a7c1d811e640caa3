package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/fakeflow/transport"
	"github.com/drblury/fakeflow/transport/sqlstore"
	"github.com/drblury/fakeflow/transport/transporttest"
)

func TestRegistered(t *testing.T) {
	assert.True(t, transport.DefaultRegistry.Has(TransportName))
	assert.Equal(t, transport.SQLiteCapabilities, Capabilities())
}

func TestBuild_StoresRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	tr, err := Build(context.Background(), &transporttest.Config{SQLiteFile: path}, watermill.NopLogger{})
	require.NoError(t, err)

	msg := message.NewMessage("uuid-1", []byte(`{"name":"a"}`))
	msg.Metadata.Set("fakeflow_ordinal", "1")
	require.NoError(t, tr.Publisher.Publish("records",
		msg,
		message.NewMessage("uuid-2", []byte(`{"name":"b"}`)),
	))
	require.NoError(t, tr.Publisher.Publish("other", message.NewMessage("uuid-3", []byte(`{}`))))

	counter, ok := tr.Publisher.(transport.RecordCounter)
	require.True(t, ok)
	n, err := counter.CountRecords(context.Background(), "records")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	store := tr.Publisher.(*sqlstore.Store)
	records, err := store.Records(context.Background(), "records", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "uuid-1", records[0].UUID)
	assert.JSONEq(t, `{"name":"a"}`, string(records[0].Payload))
	assert.Equal(t, "1", records[0].Metadata["fakeflow_ordinal"])
	assert.False(t, records[0].CreatedAt.IsZero())

	limited, err := store.Records(context.Background(), "records", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.Publisher.Publish("records", message.NewMessage("uuid-4", nil)), sqlstore.ErrClosed)
}

func TestNew_DuplicateUUIDRollsBack(t *testing.T) {
	store, err := New(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	err = store.Publish("records",
		message.NewMessage("same", []byte(`{}`)),
		message.NewMessage("same", []byte(`{}`)),
	)
	require.Error(t, err)

	n, err := store.CountRecords(context.Background(), "records")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuild_OpenError(t *testing.T) {
	original := OpenDB
	defer func() { OpenDB = original }()

	boom := errors.New("disk full")
	var gotPath string
	OpenDB = func(path string) (*sql.DB, error) {
		gotPath = path
		return nil, boom
	}

	_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, DefaultFilePath, gotPath)
}
