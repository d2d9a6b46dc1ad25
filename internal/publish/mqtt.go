// Package publish mirrors the forecast state to an MQTT topic so that
// devices on the local network can render it without polling the API.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
)

var errPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the subset of mqtt.Client the bridge needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Source is the part of forecast.Service the bridge reads from.
type Source interface {
	Location() string
	Now() time.Time
	Current() (forecast.Record, bool)
	Hourly(hours ...int) []forecast.HourlyEntry
	Daily(maxDays int) []forecast.DailyEntry
	Subscribe(h forecast.Handler) forecast.Subscription
	Unsubscribe(sub forecast.Subscription) bool
}

// Document is the retained state message.
type Document struct {
	Location    string                 `json:"location"`
	HasData     bool                   `json:"hasData"`
	Current     *forecast.Record       `json:"current,omitempty"`
	Hourly      []forecast.HourlyEntry `json:"hourly"`
	Daily       []forecast.DailyEntry  `json:"daily"`
	PublishedAt time.Time              `json:"publishedAt"`
}

// Bridge publishes a Document whenever the forecast data changes. Bursts of
// notifications collapse into a single publish of the latest state.
type Bridge struct {
	client  Publisher
	src     Source
	topic   string
	timeout time.Duration
	logger  zerolog.Logger

	signal chan struct{}
}

// NewBridge creates a Bridge publishing to topic.
func NewBridge(client Publisher, src Source, topic string, logger zerolog.Logger) *Bridge {
	return &Bridge{
		client:  client,
		src:     src,
		topic:   topic,
		timeout: 5 * time.Second,
		logger:  logger.With().Str("component", "mqtt-bridge").Str("topic", topic).Logger(),
		signal:  make(chan struct{}, 1),
	}
}

// Run subscribes to the source and publishes until ctx is done. The current
// state is published once on start.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.src.Subscribe(b.notify)
	defer b.src.Unsubscribe(sub)

	b.notify()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.signal:
			if err := b.Publish(); err != nil {
				b.logger.Warn().Err(err).Msg("publishing forecast state failed")
			}
		}
	}
}

// notify never blocks: a pending signal already covers this change.
func (b *Bridge) notify() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Publish sends the current state immediately.
func (b *Bridge) Publish() error {
	doc := b.document()
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding forecast state: %w", err)
	}

	tok := b.client.Publish(b.topic, 1, true, payload)
	if !tok.WaitTimeout(b.timeout) {
		return errPublishTimeout
	}
	if err := tok.Error(); err != nil {
		return err
	}

	b.logger.Debug().Bool("has_data", doc.HasData).Msg("forecast state published")
	return nil
}

func (b *Bridge) document() Document {
	doc := Document{
		Location:    b.src.Location(),
		Hourly:      b.src.Hourly(),
		Daily:       b.src.Daily(forecast.DefaultDailyDays),
		PublishedAt: b.src.Now(),
	}
	if rec, ok := b.src.Current(); ok {
		doc.Current = &rec
	}
	doc.HasData = doc.Current != nil || len(doc.Daily) > 0
	return doc
}

// Connect dials an MQTT broker. mqtt:// URLs are rewritten to tcp://.
func Connect(brokerURL, clientID string, logger zerolog.Logger) (mqtt.Client, error) {
	url := strings.TrimSpace(brokerURL)
	if strings.HasPrefix(url, "mqtt://") {
		url = "tcp://" + strings.TrimPrefix(url, "mqtt://")
	}
	if strings.TrimSpace(clientID) == "" {
		clientID = "forecast-aggregation-" + time.Now().Format("150405.000")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("mqtt connection lost")
	}
	opts.OnConnect = func(_ mqtt.Client) {
		logger.Info().Str("broker", url).Msg("mqtt connected")
	}

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if ok := tok.WaitTimeout(15 * time.Second); !ok {
		return nil, fmt.Errorf("connecting to mqtt broker %s: timed out", url)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", url, err)
	}
	return c, nil
}
