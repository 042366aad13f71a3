package bus

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/vidstream-live-public/internal/realtime"
	"github.com/vidstream-live-public/pkg/logger"
)

// LocalHub is the slice of a hub the bridge needs for inbound delivery.
type LocalHub interface {
	Name() string
	DeliverGroup(group string, ev realtime.Event)
	DeliverUser(userID int64, ev realtime.Event)
	DeliverAll(ev realtime.Event)
}

const (
	scopeGroup = "group"
	scopeUser  = "user"
	scopeAll   = "all"
)

// envelope is the cross-node broadcast wire format. Node lets the origin skip
// its own publications, since it already delivered locally.
type envelope struct {
	Node   string         `json:"node"`
	Scope  string         `json:"scope"`
	Group  string         `json:"group,omitempty"`
	UserID int64          `json:"userId,omitempty"`
	Event  realtime.Event `json:"event"`
}

// Bridge relays hub broadcasts over NATS so group members connected to other
// nodes still receive them.
type Bridge struct {
	conn   *nats.Conn
	nodeID string
	log    logger.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewBridge(url, nodeID string, logg logger.Logger) (*Bridge, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	if nodeID == "" {
		nodeID = uuid.NewString()
	}
	return &Bridge{conn: conn, nodeID: nodeID, log: logg.WithModule("bus")}, nil
}

var _ realtime.Bridge = (*Bridge)(nil)

func subject(hub string) string {
	return "hub." + hub + ".events"
}

func (b *Bridge) publish(hub string, env envelope) error {
	env.Node = b.nodeID
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return b.conn.Publish(subject(hub), data)
}

func (b *Bridge) PublishGroup(hub, group string, ev realtime.Event) error {
	return b.publish(hub, envelope{Scope: scopeGroup, Group: group, Event: ev})
}

func (b *Bridge) PublishUser(hub string, userID int64, ev realtime.Event) error {
	return b.publish(hub, envelope{Scope: scopeUser, UserID: userID, Event: ev})
}

func (b *Bridge) PublishAll(hub string, ev realtime.Event) error {
	return b.publish(hub, envelope{Scope: scopeAll, Event: ev})
}

// Attach subscribes the bridge to each hub's subject and replays remote
// broadcasts into the local registry.
func (b *Bridge) Attach(hubs ...LocalHub) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, hub := range hubs {
		hub := hub
		sub, err := b.conn.Subscribe(subject(hub.Name()), func(msg *nats.Msg) {
			var env envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				b.log.Errorf("drop malformed envelope on %s: %v", msg.Subject, err)
				return
			}
			if env.Node == b.nodeID {
				return
			}
			switch env.Scope {
			case scopeGroup:
				hub.DeliverGroup(env.Group, env.Event)
			case scopeUser:
				hub.DeliverUser(env.UserID, env.Event)
			case scopeAll:
				hub.DeliverAll(env.Event)
			default:
				b.log.Warnf("unknown scope %q on %s", env.Scope, msg.Subject)
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject(hub.Name()), err)
		}
		b.subs = append(b.subs, sub)
	}
	return nil
}

func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.conn.Close()
}
