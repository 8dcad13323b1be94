package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"matchcore/app/models"
)

const publishTimeout = 3 * time.Second

// NopSink drops every event
type NopSink struct{}

func (NopSink) NotifyMatch(context.Context, string, string) {}
func (NopSink) NotifyLike(context.Context, string, string, models.LikeKind) {}

// LogSink writes events to the logger
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) NotifyMatch(_ context.Context, userA, userB string) {
	s.Log.Info("new match", zap.String("user_a", userA), zap.String("user_b", userB))
}

func (s LogSink) NotifyLike(_ context.Context, actorID, targetID string, kind models.LikeKind) {
	s.Log.Debug("new like",
		zap.String("actor", actorID),
		zap.String("target", targetID),
		zap.String("kind", string(kind)),
	)
}

// MultiSink fans every event out to each sink in order
type MultiSink []NotificationSink

func (m MultiSink) NotifyMatch(ctx context.Context, userA, userB string) {
	for _, s := range m {
		s.NotifyMatch(ctx, userA, userB)
	}
}

func (m MultiSink) NotifyLike(ctx context.Context, actorID, targetID string, kind models.LikeKind) {
	for _, s := range m {
		s.NotifyLike(ctx, actorID, targetID, kind)
	}
}

// Publisher is the slice of the Redis service the notifier uses
type Publisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// EventNotifier publishes match events on a pub/sub channel. Delivery failures
// are logged and never reach the caller.
type EventNotifier struct {
	pub     Publisher
	channel string
	log     *zap.Logger
	now     func() time.Time
}

func NewEventNotifier(pub Publisher, channel string, log *zap.Logger) *EventNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventNotifier{pub: pub, channel: channel, log: log.Named("notifier"), now: time.Now}
}

func (n *EventNotifier) NotifyMatch(ctx context.Context, userA, userB string) {
	n.publish(ctx, models.NewMatchEvent(userA, userB, n.now().UTC()))
}

func (n *EventNotifier) NotifyLike(ctx context.Context, actorID, targetID string, kind models.LikeKind) {
	n.publish(ctx, models.NewLikeEvent(actorID, targetID, kind, n.now().UTC()))
}

func (n *EventNotifier) publish(ctx context.Context, evt models.MatchEvent) {
	// the request may finish before the publish does
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.pub.Publish(ctx, n.channel, evt); err != nil {
		n.log.Warn("failed to publish match event",
			zap.String("type", evt.Type),
			zap.Strings("recipients", evt.Recipients),
			zap.Error(err),
		)
	}
}
