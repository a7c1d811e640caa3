package http

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/fakeflow/internal/runtime/metadata"
	"github.com/drblury/fakeflow/transport"
	"github.com/drblury/fakeflow/transport/transporttest"
)

func TestRegistered(t *testing.T) {
	assert.True(t, transport.DefaultRegistry.Has(TransportName))
	assert.Equal(t, transport.HTTPCapabilities, Capabilities())
}

func TestMarshalMessageFunc(t *testing.T) {
	msg := message.NewMessage("1", []byte(`{"a":1}`))
	msg.Metadata.Set(metadata.KeyContentType, "application/json")

	req, err := MarshalMessageFunc("http://collector/ingest/")("records", msg)
	require.NoError(t, err)
	assert.Equal(t, "http://collector/ingest/records", req.URL.String())
	assert.Equal(t, nethttp.MethodPost, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestBuild_PostsRecords(t *testing.T) {
	var (
		mu     sync.Mutex
		paths  []string
		bodies []string
	)
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	tr, err := Build(context.Background(), &transporttest.Config{HTTPPublisherURL: server.URL}, watermill.NopLogger{})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Publisher.Publish("records", message.NewMessage("1", []byte(`{"n":1}`))))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/records"}, paths)
	assert.Equal(t, []string{`{"n":1}`}, bodies)
}

func TestBuild_RequiresURL(t *testing.T) {
	_, err := Build(context.Background(), &transporttest.Config{}, watermill.NopLogger{})
	assert.ErrorContains(t, err, "publisher URL is required")
}
