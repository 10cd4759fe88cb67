package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/errors"
	"chat-hub/observability"
	"chat-hub/runtime"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type IChatService interface {
	Connect(conn domain.ConnID, sink contract.ConnectionSink)
	Disconnect(ctx context.Context, conn domain.ConnID)
	Handle(ctx context.Context, conn domain.ConnID, cmd domain.Command) error
	Reject(ctx context.Context, conn domain.ConnID, request domain.CommandType, err error)
}

// ChatService is the entry point of the transport: it validates commands,
// routes them to the orchestrator and reports failures back to the sender.
type ChatService struct {
	log           *slog.Logger
	orchestrator  *runtime.Orchestrator
	registry      contract.IRegistry
	metrics       *observability.Metrics
	maxNameLength int
}

func NewChatService(log *slog.Logger, o *runtime.Orchestrator, registry contract.IRegistry,
	metrics *observability.Metrics, maxNameLength int) *ChatService {
	return &ChatService{
		log:           log,
		orchestrator:  o,
		registry:      registry,
		metrics:       metrics,
		maxNameLength: maxNameLength,
	}
}

func (s *ChatService) Connect(conn domain.ConnID, sink contract.ConnectionSink) {
	s.registry.Register(conn, sink)
	s.log.Debug("Connection registered", "conn", conn)
}

// Disconnect removes conn from every room before detaching its sink,
// so the remaining members see it leave.
func (s *ChatService) Disconnect(ctx context.Context, conn domain.ConnID) {
	s.orchestrator.Disconnect(ctx, conn)
	s.registry.Unregister(conn)
	s.log.Debug("Connection unregistered", "conn", conn)
}

// Handle runs cmd on behalf of conn. A rejected command is reported to conn
// as an error notification and also returned to the caller.
func (s *ChatService) Handle(ctx context.Context, conn domain.ConnID, cmd domain.Command) error {
	if cmd == nil {
		return s.reject(ctx, conn, "", errors.ErrUnknownCommand)
	}
	if err := s.validate(cmd); err != nil {
		return s.reject(ctx, conn, cmd.Type(), err)
	}
	if err := s.route(ctx, conn, cmd); err != nil {
		return s.reject(ctx, conn, cmd.Type(), err)
	}
	s.metrics.Request(string(cmd.Type()), observability.OutcomeOK)
	return nil
}

func (s *ChatService) reject(ctx context.Context, conn domain.ConnID, request domain.CommandType, err error) error {
	s.Reject(ctx, conn, request, err)
	return err
}

// Reject reports a request that never reached a room, such as an undecodable frame.
func (s *ChatService) Reject(ctx context.Context, conn domain.ConnID, request domain.CommandType, err error) {
	label := string(request)
	if label == "" {
		label = "unknown"
	}
	s.metrics.Request(label, observability.OutcomeRejected)
	s.orchestrator.Reject(ctx, conn, request, err)
}

func (s *ChatService) route(ctx context.Context, conn domain.ConnID, cmd domain.Command) error {
	o := s.orchestrator
	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		return o.Join(ctx, conn, c.RoomID, c.RoomName)
	case domain.LeaveRoomCommand:
		return o.Leave(ctx, conn, c.RoomID)
	case domain.SendEventCommand:
		return o.Send(ctx, conn, c.RoomID, c.Payload)
	case domain.EditMessageCommand:
		return o.Edit(ctx, conn, c.RoomID, c.MessageID, c.NewContent)
	case domain.DeleteMessageCommand:
		return o.Delete(ctx, conn, c.RoomID, c.MessageID)
	case domain.StarMessageCommand:
		return o.Star(ctx, conn, c.RoomID, c.MessageID)
	case domain.UnstarMessageCommand:
		return o.Unstar(ctx, conn, c.RoomID, c.MessageID)
	case domain.ListStarredCommand:
		return o.ListStarred(ctx, conn, c.RoomID)
	case domain.GetMembersCommand:
		return o.GetMembers(ctx, conn, c.RoomID)
	case domain.StartTypingCommand:
		return o.Typing(ctx, conn, c.RoomID, true)
	case domain.StopTypingCommand:
		return o.Typing(ctx, conn, c.RoomID, false)
	case domain.SetUsernameCommand:
		o.SetDisplayName(ctx, conn, strings.TrimSpace(c.Username))
		return nil
	case domain.ListRoomsCommand:
		o.ListRooms(ctx, conn)
		return nil
	case domain.CreateRoomCommand:
		o.CreateRoom(ctx, conn, strings.TrimSpace(c.Name))
		return nil
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownCommand, cmd)
	}
}

func (s *ChatService) validate(cmd domain.Command) error {
	if _, ok := cmd.(domain.ListRoomsCommand); ok {
		return nil
	}
	if err := validate.Struct(cmd); err != nil {
		return invalid(err)
	}
	switch c := cmd.(type) {
	case domain.SetUsernameCommand:
		return s.validateUsername(strings.TrimSpace(c.Username))
	case domain.CreateRoomCommand:
		if err := validate.Var(strings.TrimSpace(c.Name), "required"); err != nil {
			return fmt.Errorf("%w: room name must not be blank", errors.ErrInvalidRequest)
		}
	}
	return nil
}

// validateUsername checks the name as it will be stored, after trimming.
func (s *ChatService) validateUsername(name string) error {
	rule := "required"
	if s.maxNameLength > 0 {
		rule = fmt.Sprintf("required,max=%d", s.maxNameLength)
	}
	if err := validate.Var(name, rule); err != nil {
		if s.maxNameLength > 0 {
			return fmt.Errorf("%w: username must be 1 to %d characters", errors.ErrInvalidRequest, s.maxNameLength)
		}
		return fmt.Errorf("%w: username must not be blank", errors.ErrInvalidRequest)
	}
	return nil
}

// invalid turns validator errors into a short field list the client can read.
func invalid(err error) error {
	var fields validator.ValidationErrors
	if !goerrors.As(err, &fields) {
		return fmt.Errorf("%w: %s", errors.ErrInvalidRequest, err)
	}
	details := lo.Map(fields, func(fe validator.FieldError, _ int) string {
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	})
	return fmt.Errorf("%w: %s", errors.ErrInvalidRequest, strings.Join(details, ", "))
}
