package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"slotbooker/internal/domain"
)

const (
	channelPrefix      = "event:"
	channelPattern     = channelPrefix + "*"
	outboundBuffer     = 256
	remotePublishLimit = 2 * time.Second
)

// relayEnvelope is the wire form of a relayed change. Origin lets an
// instance skip the messages it published itself.
type relayEnvelope struct {
	Origin string                 `json:"origin"`
	Change domain.SlotStateChange `json:"change"`
}

// Relay bridges the local hub to other instances over Redis pub/sub.
// Local fan-out always happens first; the Redis leg is best effort, so a
// Redis outage degrades the system to single-instance broadcasting
// without touching booking correctness.
type Relay struct {
	rdb      *redis.Client
	hub      *Hub
	origin   string
	logger   *slog.Logger
	outbound chan domain.SlotStateChange
}

// NewRelay wraps the hub with cross-instance fan-out. origin must be
// unique per instance.
func NewRelay(rdb *redis.Client, hub *Hub, origin string, logger *slog.Logger) *Relay {
	return &Relay{
		rdb:      rdb,
		hub:      hub,
		origin:   origin,
		logger:   logger,
		outbound: make(chan domain.SlotStateChange, outboundBuffer),
	}
}

var _ domain.ChangePublisher = (*Relay)(nil)

// Publish fans the change out locally and queues it for the other
// instances. It never blocks the caller.
func (r *Relay) Publish(change domain.SlotStateChange) {
	r.hub.Publish(change)
	select {
	case r.outbound <- change:
	default:
		r.logger.Warn("relay outbound queue full, dropping change", "event_id", change.EventID, "slot_id", change.SlotID)
	}
}

// Run pumps messages both ways until ctx is cancelled: queued local
// changes out to Redis, remote changes into the local hub.
func (r *Relay) Run(ctx context.Context) error {
	go r.forward(ctx)

	ps := r.rdb.PSubscribe(ctx, channelPattern)
	defer ps.Close()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handleMessage([]byte(msg.Payload))
		}
	}
}

func (r *Relay) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-r.outbound:
			if err := r.publishRemote(ctx, change); err != nil {
				r.logger.Warn("relay publish failed", "event_id", change.EventID, "error", err)
			}
		}
	}
}

// publishRemote sends one change to the event's Redis channel.
func (r *Relay) publishRemote(ctx context.Context, change domain.SlotStateChange) error {
	payload, err := json.Marshal(relayEnvelope{Origin: r.origin, Change: change})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, remotePublishLimit)
	defer cancel()
	return r.rdb.Publish(ctx, channelPrefix+change.EventID, payload).Err()
}

// handleMessage feeds a remote change into the local hub, skipping
// messages this instance published itself.
func (r *Relay) handleMessage(payload []byte) {
	var env relayEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		r.logger.Warn("relay: malformed message", "error", err)
		return
	}
	if env.Origin == r.origin {
		return
	}
	r.hub.Publish(env.Change)
}
