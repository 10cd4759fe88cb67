package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/mocks"
	"chat-hub/observability"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFanout_OnlyLoggedEventsReachSinks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	fanout := NewFanout(log, gateway, time.Second, nil).Add(sink)

	logged := domain.NewEvent("x", time.Now(), &domain.MessagePayload{Content: "hi"})
	members := event.RoomMembers{RoomID: "r", Members: []domain.Member{{UserID: "x"}}}
	batch := Batch{Room: "r", Seq: 1, Deliveries: []Delivery{
		{Recipients: []domain.ConnID{"x", "y"}, Notification: event.RoomEvent{RoomID: "r", Event: logged}, Logged: &logged},
		{Recipients: []domain.ConnID{"x"}, Notification: members},
	}}

	// Given every recipient gets its copy, in order
	gomock.InOrder(
		gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("x"), event.RoomEvent{RoomID: "r", Event: logged}).Return(nil),
		gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("y"), event.RoomEvent{RoomID: "r", Event: logged}).Return(nil),
		sink.EXPECT().Consume(gomock.Any(), domain.RoomID("r"), logged).Return(nil),
		gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("x"), members).Return(nil),
	)

	// When the batch is published
	fanout.Publish(context.Background(), batch)

	// Then the members snapshot never reached the sink
	req.True(ctrl.Satisfied())
}

func TestFanout_FailuresAreIsolated(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockGateway(ctrl)
	sink := mocks.NewMockEventSink(ctrl)
	metrics := observability.NewMetrics()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	fanout := NewFanout(log, gateway, 50*time.Millisecond, metrics).Add(sink)

	logged := domain.NewEvent("x", time.Now(), domain.UserJoinPayload{UserID: "x"})
	batch := Batch{Room: "r", Seq: 1, Deliveries: []Delivery{{
		Recipients:   []domain.ConnID{"gone", "slow", "x"},
		Notification: event.RoomEvent{RoomID: "r", Event: logged},
		Logged:       &logged,
	}}}

	// Given one recipient left and another is saturated, and the sink is full
	gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("gone"), gomock.Any()).
		Return(fmt.Errorf("%w: gone", errors.ErrConnectionUnknown))
	gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("slow"), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.ConnID, _ event.Notification) error {
			_, hasDeadline := ctx.Deadline()
			req.True(hasDeadline)
			return errors.ErrSinkFull
		})
	gateway.EXPECT().Deliver(gomock.Any(), domain.ConnID("x"), gomock.Any()).Return(nil)
	sink.EXPECT().Consume(gomock.Any(), domain.RoomID("r"), logged).Return(errors.ErrSinkFull)

	// When the batch is published
	fanout.Publish(context.Background(), batch)

	// Then every outcome is counted
	expected := `
# HELP chat_deliveries_total Notifications handed to connections, by outcome.
# TYPE chat_deliveries_total counter
chat_deliveries_total{outcome="dropped"} 1
chat_deliveries_total{outcome="failed"} 1
chat_deliveries_total{outcome="ok"} 1
`
	req.NoError(testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "chat_deliveries_total"))
}
