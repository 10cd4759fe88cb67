package websocket

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordingService keeps what the handler asked for.
type recordingService struct {
	mu           sync.Mutex
	handled      []domain.Command
	rejected     []error
	disconnected chan domain.ConnID
}

func newRecordingService() *recordingService {
	return &recordingService{disconnected: make(chan domain.ConnID, 1)}
}

func (s *recordingService) Connect(domain.ConnID, contract.ConnectionSink) {}

func (s *recordingService) Disconnect(_ context.Context, conn domain.ConnID) {
	s.disconnected <- conn
}

func (s *recordingService) Handle(_ context.Context, _ domain.ConnID, cmd domain.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handled = append(s.handled, cmd)
	return nil
}

func (s *recordingService) Reject(_ context.Context, _ domain.ConnID, _ domain.CommandType, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected = append(s.rejected, err)
}

func (s *recordingService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handled) + len(s.rejected)
}

func startHandler(t *testing.T, service *recordingService, maxFrame int64) *websocket.Conn {
	t.Helper()
	handler := NewHandler(logs.GetLoggerFromLevel(slog.LevelDebug), service, Settings{
		BufferSize:   8,
		WriteTimeout: time.Second,
		PongTimeout:  10 * time.Second,
		MaxFrameSize: maxFrame,
	})
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	socket, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = socket.Close() })
	return socket
}

func TestHandler_OversizedFrameClosesConnection(t *testing.T) {
	req := require.New(t)
	service := newRecordingService()
	socket := startHandler(t, service, 512)

	// When a client sends a frame over the limit
	huge := `{"type":"user.set_username","data":{"username":"` + strings.Repeat("a", 4096) + `"}}`
	req.NoError(socket.WriteMessage(websocket.TextMessage, []byte(huge)))

	// Then the hub closes the socket without handling the frame
	_ = socket.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := socket.ReadMessage()
	req.True(websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)
	select {
	case <-service.disconnected:
	case <-time.After(2 * time.Second):
		req.Fail("connection was not disconnected")
	}
	req.Zero(service.calls())
}

func TestHandler_FrameWithinLimitIsHandled(t *testing.T) {
	req := require.New(t)
	service := newRecordingService()
	socket := startHandler(t, service, 512)

	// When a small frame arrives
	req.NoError(socket.WriteMessage(websocket.TextMessage, []byte(`{"type":"room.list"}`)))

	// Then it reaches the service
	req.Eventually(func() bool { return service.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	service.mu.Lock()
	defer service.mu.Unlock()
	req.Equal([]domain.Command{domain.ListRoomsCommand{}}, service.handled)
}
