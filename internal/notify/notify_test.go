package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/config"
)

func TestWebhookNotifierPostsWithoutBody(t *testing.T) {
	var gotMethod string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, srv.Client())
	require.NoError(t, n.Notify(t.Context(), Event{Version: "1.0.0"}))
	require.Equal(t, http.MethodPost, gotMethod)
	require.Empty(t, gotBody)
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, srv.Client()).Notify(t.Context(), Event{})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "502")
}

func TestWebhookNotifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewWebhookNotifier(url, NewHTTPClient(time.Second)).Notify(t.Context(), Event{})
	require.Error(t, err)
}

type fakeConn struct {
	subject string
	data    []byte
	flushed bool
	closed  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSNotifierPublishesEvent(t *testing.T) {
	conn := &fakeConn{}
	n := NewNATSNotifier("nats://localhost:4222", "docgen.completed", time.Second)
	n.dial = func(string) (publisher, error) { return conn, nil }

	completed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, n.Notify(context.Background(), Event{RunID: "r1", Version: "1.0.0", CompletedAt: completed, Nodes: 3, Files: 4}))

	require.Equal(t, "docgen.completed", conn.subject)
	require.True(t, conn.flushed)
	require.True(t, conn.closed)
	require.JSONEq(t, `{"runId":"r1","version":"1.0.0","completedAt":"2024-05-01T12:00:00Z","nodes":3,"files":4}`, string(conn.data))
}

func TestNATSNotifierDialFailure(t *testing.T) {
	n := NewNATSNotifier("nats://localhost:1", "s", time.Second)
	n.dial = func(string) (publisher, error) { return nil, errors.New("refused") }
	require.ErrorContains(t, n.Notify(context.Background(), Event{}), "refused")
}

type recordingNotifier struct {
	name string
	err  error
	got  []Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func (r *recordingNotifier) Name() string { return r.name }

func TestMultiNotifiesAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingNotifier{name: "a", err: boom}
	b := &recordingNotifier{name: "b"}

	err := Multi{a, b}.Notify(context.Background(), Event{Version: "2.0.0"})
	require.ErrorIs(t, err, boom)
	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)

	require.NoError(t, Multi{}.Notify(context.Background(), Event{}))
}

func TestFromConfig(t *testing.T) {
	require.Empty(t, FromConfig(config.NotifyConfig{}, nil))

	m := FromConfig(config.NotifyConfig{WebhookURL: "https://hooks.example.com", NATSURL: "nats://localhost:4222", NATSSubject: "x"}, nil)
	require.Len(t, m, 2)
	require.Equal(t, "webhook", m[0].Name())
	require.Equal(t, "nats", m[1].Name())

	data, err := json.Marshal(Event{})
	require.NoError(t, err)
	require.NotContains(t, string(data), "versions")
}
