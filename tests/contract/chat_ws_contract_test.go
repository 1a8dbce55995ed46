package contract_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/handler"
	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/service"
)

// stubChatService pushes one canned message to every connected socket so the
// wire format can be validated without a database.
type stubChatService struct {
	message dto.MessageResponse
}

func (s *stubChatService) CreatePrivateChat(context.Context, uint, uint) (dto.ChatResponse, error) {
	return dto.ChatResponse{}, nil
}

func (s *stubChatService) CreateGroupChat(context.Context, uint, dto.GroupChatCreateRequest) (dto.ChatResponse, error) {
	return dto.ChatResponse{}, nil
}

func (s *stubChatService) AddParticipant(context.Context, uint, uint, uint) error { return nil }

func (s *stubChatService) RemoveParticipant(context.Context, uint, uint, uint) error { return nil }

func (s *stubChatService) ListChats(context.Context, uint) ([]dto.ChatResponse, error) {
	return nil, nil
}

func (s *stubChatService) SendMessage(context.Context, uint, uint, dto.MessageSendRequest) (dto.MessageResponse, error) {
	return s.message, nil
}

func (s *stubChatService) History(context.Context, uint, uint, int) ([]dto.MessageResponse, error) {
	return []dto.MessageResponse{s.message}, nil
}

func (s *stubChatService) LatestMessages(context.Context, uint, uint, time.Time, int) ([]dto.MessageResponse, error) {
	return []dto.MessageResponse{s.message}, nil
}

func (s *stubChatService) MarkRead(context.Context, uint, uint) (int64, error) { return 0, nil }

func (s *stubChatService) UnreadCount(context.Context, uint, uint) (int64, error) { return 0, nil }

func (s *stubChatService) DeleteMessage(context.Context, uint, uint) error { return nil }

func (s *stubChatService) ServeConnection(conn *fiberws.Conn, opts service.ChatConnectionOptions) {
	payload, err := json.Marshal(s.message)
	if err != nil {
		_ = conn.Close()
		return
	}
	if err := conn.WriteMessage(fiberws.TextMessage, payload); err != nil {
		_ = conn.Close()
		return
	}
	// Hold the socket open until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			_ = conn.Close()
			return
		}
	}
}

func (s *stubChatService) Start(context.Context) {}

func TestChatWebsocketMessageContract(t *testing.T) {
	schema := compileSchema(t, "chat_message.schema.json")

	svc := &stubChatService{message: dto.MessageResponse{
		ID:       5,
		ChatID:   3,
		SenderID: 2,
		Content:  "see you at 8",
		SentAt:   time.Now().UTC(),
	}}

	app := fiber.New()
	app.Use(middleware.CorrelationID())

	chatHandler := handler.NewChatHandler(svc, zerolog.Nop())
	group := app.Group("/api/v1/chats", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(2))
		c.Locals("user_role", "user")
		return c.Next()
	})
	chatHandler.Register(group)

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/chats/ws?chat_id=3"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestChatWebsocketRequiresUpgrade(t *testing.T) {
	svc := &stubChatService{}

	app := fiber.New()
	chatHandler := handler.NewChatHandler(svc, zerolog.Nop())
	group := app.Group("/api/v1/chats", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(2))
		return c.Next()
	})
	chatHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/ws", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestChatWebsocketClosesAnonymousConnections(t *testing.T) {
	svc := &stubChatService{}

	app := fiber.New()
	chatHandler := handler.NewChatHandler(svc, zerolog.Nop())
	chatHandler.Register(app.Group("/api/v1/chats"))

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/chats/ws?chat_id=3"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "expected policy violation close, got %v", err)
}

func TestChatWebsocketRequiresChatID(t *testing.T) {
	svc := &stubChatService{}

	app := fiber.New()
	chatHandler := handler.NewChatHandler(svc, zerolog.Nop())
	group := app.Group("/api/v1/chats", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(2))
		return c.Next()
	})
	chatHandler.Register(group)

	baseURL, shutdown := startFiberServer(t, app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/chats/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseUnsupportedData), "expected unsupported data close, got %v", err)
}

func startFiberServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
