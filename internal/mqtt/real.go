package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/inconshreveable/log15"
)

// bufferCapacity is how many messages are held while the broker is
// unreachable. At one reading per 200 ms this covers roughly a minute.
const bufferCapacity = 256

var logger = log.New("module", "mqtt")

// RealPublisher publishes to an actual MQTT broker. While disconnected it
// buffers messages and replays them on reconnect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background and retried indefinitely; publishing
// before the first connect lands in the replay buffer.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{buf: newRingBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("wind-sensor").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			p.replay(c)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// PublishReading sends one wind reading, QoS 0, not retained.
func (p *RealPublisher) PublishReading(r Reading) error {
	payload, err := FormatReadingPayload(r)
	if err != nil {
		return fmt.Errorf("format reading payload: %w", err)
	}
	return p.publish(TopicReading, 0, false, payload)
}

// PublishSystem sends a system lifecycle event, QoS 1 so shutdown events
// survive a flaky link.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.buffer(topic, qos, retained, payload)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.buffer(topic, qos, retained, payload)
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		p.buffer(topic, qos, retained, payload)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *RealPublisher) buffer(topic string, qos byte, retained bool, payload []byte) {
	p.mu.Lock()
	p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	p.mu.Unlock()
}

// replay flushes the buffered messages after a (re)connect, oldest first.
func (p *RealPublisher) replay(c paho.Client) {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	logger.Info("replaying buffered messages", "count", len(msgs))
	for _, m := range msgs {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		token.WaitTimeout(5 * time.Second)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
