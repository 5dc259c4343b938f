package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/realtime"
)

type hubFixture struct {
	reg      *realtime.Registry
	set      *realtime.ConnSet
	notifier *realtime.Notifier
	hub      *realtime.Hub
	srv      *httptest.Server
	active   atomic.Int64
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	f := &hubFixture{
		reg: realtime.NewRegistry(),
		set: realtime.NewConnSet(),
	}
	f.notifier = realtime.NewNotifier(f.reg, f.set, zap.NewNop(), realtime.Hooks{})
	f.hub = realtime.NewHub(f.reg, f.set, "", zap.NewNop(), realtime.HubHooks{
		OnConnect:    func() { f.active.Add(1) },
		OnDisconnect: func() { f.active.Add(-1) },
	})
	f.srv = httptest.NewServer(httpHandler(f.hub))
	t.Cleanup(func() {
		f.hub.Close()
		f.srv.Close()
	})
	return f
}

func (f *hubFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/socket" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_RegistersAndDelivers(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t, "?userId=S1")

	require.Eventually(t, func() bool {
		_, ok := f.reg.Lookup("S1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	f.notifier.Notify("S1", realtime.EventApplicationStatusUpdate, map[string]string{
		"jobTitle": "Go Dev", "status": "Interview", "applicationId": "A1",
	})

	msg := readEvent(t, conn)
	assert.Equal(t, realtime.EventApplicationStatusUpdate, msg["event"])
	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Interview", data["status"])
	assert.Equal(t, "A1", data["applicationId"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t, "?userId=S1")

	require.Eventually(t, func() bool { return f.reg.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, ok := f.reg.Lookup("S1")
		return !ok && f.set.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), f.active.Load())

	// A push to the now-offline user is a silent no-op.
	assert.NotPanics(t, func() { f.notifier.Notify("S1", realtime.EventNewApplication, nil) })
}

func TestHub_AnonymousConnectionGetsBroadcastOnly(t *testing.T) {
	f := newHubFixture(t)
	conn := f.dial(t, "")

	require.Eventually(t, func() bool { return f.set.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, f.reg.Len())

	sent := f.notifier.Broadcast(realtime.EventNewJobPosted, map[string]string{"title": "SRE"})
	assert.Equal(t, 1, sent)

	msg := readEvent(t, conn)
	assert.Equal(t, realtime.EventNewJobPosted, msg["event"])
}

func TestHub_OriginCheck(t *testing.T) {
	reg, set := realtime.NewRegistry(), realtime.NewConnSet()
	hub := realtime.NewHub(reg, set, "http://localhost:5173", zap.NewNop(), realtime.HubHooks{})
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket?userId=u1"
	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, 0, reg.Len())
}

func httpHandler(h *realtime.Hub) http.Handler {
	return http.HandlerFunc(h.ServeWS)
}
