package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/daniswara/kumpul-api/internal/dto"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/observability"
	"github.com/daniswara/kumpul-api/internal/repository"
)

const (
	chatSendBufferSize = 32
	chatCacheTTL       = 30 * time.Minute
)

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID        uint
	ChatID        uint
	CorrelationID string
	Context       context.Context
}

// ChatService owns conversation membership, message append and read-state
// tracking, plus live delivery to connected websocket clients.
type ChatService interface {
	CreatePrivateChat(ctx context.Context, actorID, otherID uint) (dto.ChatResponse, error)
	CreateGroupChat(ctx context.Context, actorID uint, payload dto.GroupChatCreateRequest) (dto.ChatResponse, error)
	AddParticipant(ctx context.Context, chatID, actorID, userID uint) error
	RemoveParticipant(ctx context.Context, chatID, actorID, userID uint) error
	ListChats(ctx context.Context, userID uint) ([]dto.ChatResponse, error)
	SendMessage(ctx context.Context, chatID, senderID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error)
	History(ctx context.Context, chatID, requesterID uint, limit int) ([]dto.MessageResponse, error)
	LatestMessages(ctx context.Context, chatID, requesterID uint, before time.Time, limit int) ([]dto.MessageResponse, error)
	MarkRead(ctx context.Context, chatID, userID uint) (int64, error)
	UnreadCount(ctx context.Context, chatID, userID uint) (int64, error)
	DeleteMessage(ctx context.Context, messageID, requesterID uint) error
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	Start(ctx context.Context)
}

type chatService struct {
	chats         repository.ChatRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	notifications NotificationDispatcher
	redis         *redis.Client
	redisStream   string
	redisCache    string
	nats          *nats.Conn
	natsSubject   string
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
	hub           *chatHub
	nodeID        string
}

// chatHub keeps track of active websocket clients per chat and handles
// broadcasting. Sends never block; slow clients simply miss the push and
// catch up from history.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*chatClient]struct{}
	log   zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan dto.MessageResponse
	options ChatConnectionOptions
	service *chatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type chatEvent struct {
	Source  string              `json:"source"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

// NewChatService constructs the chat membership and delivery service.
func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository, users repository.UserRepository, notifications NotificationDispatcher, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) ChatService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	hub := &chatHub{
		rooms: make(map[uint]map[*chatClient]struct{}),
		log:   logger.With().Str("component", "chat_hub").Logger(),
	}

	streamChannel := ""
	cachePrefix := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":chat"
		cachePrefix = channelBase + ":chat:last"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &chatService{
		chats:         chats,
		messages:      messages,
		users:         users,
		notifications: notifications,
		redis:         redisClient,
		redisStream:   streamChannel,
		redisCache:    cachePrefix,
		nats:          natsConn,
		natsSubject:   natsSubject,
		validator:     validate,
		logger:        logger.With().Str("component", "chat_service").Logger(),
		tracer:        otel.Tracer("github.com/daniswara/kumpul-api/internal/service/chat"),
		sanitizer:     sanitizer,
		hub:           hub,
		nodeID:        uuid.NewString(),
	}
}

func (s *chatService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// CreatePrivateChat is idempotent: an existing private chat for the pair is
// returned unchanged.
func (s *chatService) CreatePrivateChat(ctx context.Context, actorID, otherID uint) (dto.ChatResponse, error) {
	if actorID == otherID {
		return dto.ChatResponse{}, ErrSelfReference
	}

	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChatResponse{}, ErrNotFound
		}
		return dto.ChatResponse{}, err
	}

	existing, err := s.chats.FindPrivateByPair(ctx, actorID, otherID)
	if err == nil {
		return dto.NewChatResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ChatResponse{}, err
	}

	pairKey := models.PrivatePairKey(actorID, otherID)
	chat := models.Chat{
		Type:      models.ChatPrivate,
		CreatedBy: actorID,
		PairKey:   &pairKey,
	}

	if err := s.chats.CreateWithParticipants(ctx, &chat, []uint{actorID, otherID}); err != nil {
		return dto.ChatResponse{}, err
	}

	return dto.NewChatResponse(chat), nil
}

func (s *chatService) CreateGroupChat(ctx context.Context, actorID uint, payload dto.GroupChatCreateRequest) (dto.ChatResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatResponse{}, err
	}

	// Creator joins first; listed ids follow with duplicates of the creator
	// skipped. Membership is resolved before anything is written so a bad id
	// fails the whole creation.
	roster := []uint{actorID}
	seen := map[uint]struct{}{actorID: {}}
	for _, id := range payload.ParticipantIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, err := s.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ChatResponse{}, ErrNotFound
			}
			return dto.ChatResponse{}, err
		}
		seen[id] = struct{}{}
		roster = append(roster, id)
	}

	if len(roster) < 2 {
		return dto.ChatResponse{}, ErrInvalidOperation
	}

	chat := models.Chat{
		Type:       models.ChatGroup,
		GroupName:  strings.TrimSpace(payload.Name),
		GroupImage: payload.ImageURL,
		CreatedBy:  actorID,
	}

	if err := s.chats.CreateWithParticipants(ctx, &chat, roster); err != nil {
		return dto.ChatResponse{}, err
	}

	return dto.NewChatResponse(chat), nil
}

func (s *chatService) AddParticipant(ctx context.Context, chatID, actorID, userID uint) error {
	chat, err := s.findChat(ctx, chatID)
	if err != nil {
		return err
	}

	if chat.Type != models.ChatGroup {
		return ErrInvalidOperation
	}
	if !chat.HasParticipant(actorID) {
		return ErrForbidden
	}
	if chat.HasParticipant(userID) {
		return ErrConflict
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.chats.AddParticipant(ctx, chatID, userID)
}

func (s *chatService) RemoveParticipant(ctx context.Context, chatID, actorID, userID uint) error {
	chat, err := s.findChat(ctx, chatID)
	if err != nil {
		return err
	}

	if chat.Type != models.ChatGroup {
		return ErrInvalidOperation
	}
	if !chat.HasParticipant(userID) {
		return ErrNotFound
	}
	// Members may leave on their own; removing someone else is reserved for
	// the room creator.
	if actorID != userID && actorID != chat.CreatedBy {
		return ErrForbidden
	}

	return s.chats.RemoveParticipant(ctx, chatID, userID)
}

func (s *chatService) ListChats(ctx context.Context, userID uint) ([]dto.ChatResponse, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewChatResponseSlice(chats), nil
}

func (s *chatService) SendMessage(ctx context.Context, chatID, senderID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.MessageResponse{}, fmt.Errorf("message content empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.send_message", trace.WithAttributes(
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("chat.sender_id", int64(senderID)),
	))
	defer span.End()

	chat, err := s.findChat(spanCtx, chatID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	sender, err := s.users.FindByID(spanCtx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrNotFound
		}
		return dto.MessageResponse{}, err
	}

	if !chat.HasParticipant(senderID) {
		return dto.MessageResponse{}, ErrForbidden
	}

	message := models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  clean,
		MediaURL: payload.MediaURL,
		SentAt:   time.Now().UTC(),
	}

	if err := s.messages.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(message)
	s.cacheLastMessage(spanCtx, response)
	s.hub.broadcast(chatID, response)
	if err := s.publish(spanCtx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish chat event")
	}

	s.notifyParticipants(spanCtx, chat, sender, message)

	observability.ChatMessagesSent().Inc()

	return response, nil
}

// History returns the chronological chat history view.
func (s *chatService) History(ctx context.Context, chatID, requesterID uint, limit int) ([]dto.MessageResponse, error) {
	if err := s.requireParticipant(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByChatAsc(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

// LatestMessages returns the latest-first listing used by conversation
// overviews. The two orderings are intentionally distinct per call site.
func (s *chatService) LatestMessages(ctx context.Context, chatID, requesterID uint, before time.Time, limit int) ([]dto.MessageResponse, error) {
	if err := s.requireParticipant(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByChatDesc(ctx, chatID, before, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

func (s *chatService) MarkRead(ctx context.Context, chatID, userID uint) (int64, error) {
	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return 0, err
	}
	return s.messages.MarkRead(ctx, chatID, userID, time.Now().UTC())
}

func (s *chatService) UnreadCount(ctx context.Context, chatID, userID uint) (int64, error) {
	if err := s.requireParticipant(ctx, chatID, userID); err != nil {
		return 0, err
	}
	return s.messages.UnreadCount(ctx, chatID, userID)
}

func (s *chatService) DeleteMessage(ctx context.Context, messageID, requesterID uint) error {
	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if message.SenderID != requesterID {
		return ErrForbidden
	}

	return s.messages.Delete(ctx, messageID)
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	member, err := s.chats.IsParticipant(baseCtx, opts.ChatID, opts.UserID)
	if err != nil || !member {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not a chat participant"))
		_ = conn.Close()
		return
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan dto.MessageResponse, chatSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatConnectionsTotal().Inc()

	if last := s.fetchLastMessage(baseCtx, opts.ChatID); last != nil {
		select {
		case client.send <- *last:
		default:
			s.logger.Debug().Uint("chat_id", opts.ChatID).Msg("dropping cached chat message due to slow consumer")
		}
	}

	go client.writer()
	client.reader()
}

func (s *chatService) findChat(ctx context.Context, chatID uint) (models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Chat{}, ErrNotFound
		}
		return models.Chat{}, err
	}
	return chat, nil
}

func (s *chatService) requireParticipant(ctx context.Context, chatID, userID uint) error {
	chat, err := s.findChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return ErrForbidden
	}
	return nil
}

// notifyParticipants creates new-message notifications for everyone on the
// roster except the sender. The dispatcher applies each recipient's
// preference flag; failures are logged and swallowed.
func (s *chatService) notifyParticipants(ctx context.Context, chat models.Chat, sender models.User, message models.Message) {
	if s.notifications == nil {
		return
	}

	for _, participant := range chat.Participants {
		if participant.UserID == sender.ID {
			continue
		}

		event := dto.NotificationEvent{
			RecipientID: participant.UserID,
			ActorID:     &sender.ID,
			Type:        models.NotificationNewMessage,
			Message:     fmt.Sprintf("%s sent you a message", sender.Name),
			MessageID:   &message.ID,
		}
		if _, err := s.notifications.Dispatch(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("recipient_id", participant.UserID).Msg("failed to dispatch message notification")
		}
	}
}

func (s *chatService) cacheLastMessage(ctx context.Context, message dto.MessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	key := fmt.Sprintf("%s:%d", s.redisCache, message.ChatID)
	if err := s.redis.Set(ctx, key, payload, chatCacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

func (s *chatService) fetchLastMessage(ctx context.Context, chatID uint) *dto.MessageResponse {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	key := fmt.Sprintf("%s:%d", s.redisCache, chatID)
	result, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var message dto.MessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached chat message")
		return nil
	}

	return &message
}

func (s *chatService) publish(ctx context.Context, message dto.MessageResponse) error {
	event := chatEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *chatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *chatService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "kumpul-chat", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *chatService) handleEvent(data []byte) {
	var event chatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Message.ChatID, event.Message)
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.ChatID
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*chatClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Uint("chat_id", room).Uint("user_id", client.options.UserID).Msg("chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.ChatID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Uint("chat_id", room).Uint("user_id", client.options.UserID).Msg("chat client disconnected")
}

func (h *chatHub) broadcast(chatID uint, message dto.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.rooms[chatID]
	for client := range clients {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Uint("chat_id", chatID).Uint("user_id", client.options.UserID).Msg("dropping chat message for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	connCtx := c.baseCtx
	if connCtx == nil {
		connCtx = context.Background()
	}

	for {
		var payload dto.MessageSendRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("chat read loop ended")
			return
		}

		if _, err := c.service.SendMessage(connCtx, c.options.ChatID, c.options.UserID, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process chat message")
			continue
		}

		select {
		case <-c.closed:
			return
		default:
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
