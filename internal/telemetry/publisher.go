// Package telemetry publishes controller phase events to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/san-kum/wirespool/internal/logging"
	"github.com/san-kum/wirespool/internal/motion"
)

const (
	PublishTimeout = 2 * time.Second

	// EventBuffer is the number of phase events queued for the broker
	// before new ones are dropped.
	EventBuffer = 64

	quiesceMillis = 250
)

var ErrPublishTimeout = errors.New("telemetry: publish timed out")

// Client is the part of mqtt.Client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Stats counts what happened to observed events.
type Stats struct {
	Sent    int
	Failed  int
	Dropped int
	LastErr error
}

// Publisher is a motion.Observer that sends every phase event as JSON.
// OnPhase only queues the event; a background worker talks to the broker,
// so a slow or unreachable broker never holds up the move. Events that do
// not fit in the queue are dropped and counted.
type Publisher struct {
	client Client
	topic  string
	logger *log.Logger

	events    chan motion.PhaseEvent
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
	stats  Stats
}

var _ motion.Observer = (*Publisher)(nil)

// NewPublisher starts the delivery worker. Close must be called to stop it.
func NewPublisher(client Client, topic string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = logging.Discard()
	}
	p := &Publisher{
		client: client,
		topic:  topic,
		logger: logger,
		events: make(chan motion.PhaseEvent, EventBuffer),
		done:   make(chan struct{}),
	}
	go p.drain()
	return p
}

// Connect dials broker and returns a publisher on topic.
func Connect(broker, clientID, topic string, logger *log.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(PublishTimeout)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return NewPublisher(client, topic, logger), nil
}

func (p *Publisher) OnPhase(ev motion.PhaseEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.stats.Dropped++
		return
	}
	select {
	case p.events <- ev:
	default:
		p.stats.Dropped++
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for ev := range p.events {
		if err := p.Publish(ev); err != nil {
			p.logger.Warn("telemetry publish failed", "topic", p.topic, "state", ev.State, "err", err)
		}
	}
}

// Publish sends ev directly and waits up to PublishTimeout for the broker.
func (p *Publisher) Publish(ev motion.PhaseEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return p.record(err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return p.record(ErrPublishTimeout)
	}
	return p.record(token.Error())
}

func (p *Publisher) record(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.stats.Failed++
		p.stats.LastErr = err
		return err
	}
	p.stats.Sent++
	return nil
}

func (p *Publisher) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close delivers the queued events, each bounded by PublishTimeout, then
// disconnects. Events observed after Close are dropped.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()

		<-p.done
		p.client.Disconnect(quiesceMillis)
	})
}
