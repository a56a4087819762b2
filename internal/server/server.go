package server

import (
	"context"
	"log"

	"github.com/jmorales-dev/nutrichat/internal/stats"
	"github.com/jmorales-dev/nutrichat/internal/types"
)

const (
	ActiveConnectionsMetric = "ActiveConnections"
	MessagesPublishedMetric = "MessagesPublished"
	MessagesDeliveredMetric = "MessagesDelivered"
	MessagesDroppedMetric   = "MessagesDropped"
)

// ChatServer fans persisted messages out to live sessions. Delivery is
// best-effort: the durable log is the source of truth and a missed push
// is recovered by the client fetching history.
type ChatServer struct {
	log            *log.Logger
	registry       *Registry
	stats          stats.StatsProvider
	registerChan   chan *Client
	deregisterChan chan *Client
	deliverChan    chan *types.Message
	stop           chan struct{}
	done           chan struct{}
}

func NewChatServer(logger *log.Logger, registry *Registry, sp stats.StatsProvider) (*ChatServer, error) {
	sp.RegisterMetric(ActiveConnectionsMetric)
	sp.RegisterMetric(MessagesPublishedMetric)
	sp.RegisterMetric(MessagesDeliveredMetric)
	sp.RegisterMetric(MessagesDroppedMetric)

	return &ChatServer{
		log:            logger,
		registry:       registry,
		stats:          sp,
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		deliverChan:    make(chan *types.Message, 256),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.registerChan:
			cs.log.Printf("adding session for %q", client.user.Nombre)
			cs.registry.Register(client)
			cs.stats.Incr(ActiveConnectionsMetric)
		case client := <-cs.deregisterChan:
			cs.log.Printf("removing session for %q", client.user.Nombre)
			cs.registry.Unregister(client)
			cs.stats.Decr(ActiveConnectionsMetric)
		case msg := <-cs.deliverChan:
			cs.dispatch(msg)
		case <-cs.stop:
			cs.log.Println("closing all sessions")
			for _, c := range cs.registry.All() {
				cs.registry.Unregister(c)
				c.stopClient()
			}

			close(cs.done)
			return
		}
	}
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.registerChan <- c
}

func (cs *ChatServer) DeregisterClient(c *Client) {
	select {
	case cs.deregisterChan <- c:
	case <-cs.stop:
	}
}

// Deliver queues an already-persisted message for fan-out. It never
// blocks the caller: when the dispatch queue is full the notification is
// dropped and the message remains readable from history.
func (cs *ChatServer) Deliver(msg *types.Message) {
	cs.stats.Incr(MessagesPublishedMetric)

	select {
	case cs.deliverChan <- msg:
	default:
		cs.log.Printf("deliver queue full, dropping realtime notification for message %d", msg.Id)
		cs.stats.Incr(MessagesDroppedMetric)
	}
}

func (cs *ChatServer) dispatch(msg *types.Message) {
	recipient, err := types.ParseRecipient(msg.ToId)
	if err != nil {
		cs.log.Printf("dispatch message %d: %v", msg.Id, err)
		return
	}

	var targets []*Client
	if recipient.IsBroadcast() {
		targets = cs.registry.All()
	} else {
		// the sender's other open sessions see their own outgoing
		// message too, so there is no local echo on the client
		targets = cs.registry.SessionsFor(recipient.UserId())
		if msg.FromId != recipient.UserId() {
			targets = append(targets, cs.registry.SessionsFor(msg.FromId)...)
		}
	}

	ev := NewMessageEvent(msg)
	for _, c := range targets {
		cs.push(c, ev)
	}
}

// push attempts delivery to a single session. Failures are isolated
// here: one dead or slow session never aborts the rest of the fan-out.
func (cs *ChatServer) push(c *Client, ev *ServerEvent) {
	if c.queueEvent(ev) {
		cs.stats.Incr(MessagesDeliveredMetric)
		return
	}

	cs.log.Printf("dropping event for %q, session not accepting writes", c.user.Nombre)
	cs.stats.Incr(MessagesDroppedMetric)
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	close(cs.stop)

	select {
	case <-cs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
