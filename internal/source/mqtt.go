package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/rs/zerolog"
)

// MQTTOptions configure the MQTT feed.
type MQTTOptions struct {
	BrokerURL      string
	ClientID       string
	QoS            byte
	KeepAlive      uint16
	ConnectTimeout time.Duration
	// Topics maps an MQTT topic to the source id its payloads belong to.
	Topics map[string]string
}

// MQTTFeed subscribes one topic per tracked source and forwards every
// publish as a reading. Reconnects and resubscribes are handled by the
// session manager.
type MQTTFeed struct {
	opts   MQTTOptions
	logger zerolog.Logger
}

// NewMQTT constructs an MQTT feed.
func NewMQTT(opts MQTTOptions, logger zerolog.Logger) *MQTTFeed {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.KeepAlive == 0 {
		opts.KeepAlive = 30
	}
	if opts.ClientID == "" {
		opts.ClientID = "sensor-extremes"
	}
	return &MQTTFeed{
		opts:   opts,
		logger: logger.With().Str("component", "mqtt_feed").Logger(),
	}
}

// Run connects, subscribes, and pumps readings until ctx is cancelled.
func (f *MQTTFeed) Run(ctx context.Context, handle Handler) error {
	if f.opts.BrokerURL == "" {
		return errors.New("mqtt broker url not configured")
	}
	if len(f.opts.Topics) == 0 {
		return errors.New("no mqtt topics configured")
	}

	broker, err := url.Parse(f.opts.BrokerURL)
	if err != nil {
		return fmt.Errorf("parse broker url: %w", err)
	}

	subs := make([]paho.SubscribeOptions, 0, len(f.opts.Topics))
	for topic := range f.opts.Topics {
		subs = append(subs, paho.SubscribeOptions{Topic: topic, QoS: f.opts.QoS})
	}

	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{broker},
		KeepAlive:                     f.opts.KeepAlive,
		CleanStartOnInitialConnection: true,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			if _, err := cm.Subscribe(ctx, &paho.Subscribe{Subscriptions: subs}); err != nil {
				f.logger.Error().Err(err).Msg("subscribe failed")
				return
			}
			f.logger.Info().Int("topics", len(subs)).Msg("subscribed")
		},
		OnConnectError: func(err error) {
			f.logger.Error().Err(err).Msg("broker connection failed")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: f.opts.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){
				func(pr paho.PublishReceived) (bool, error) {
					f.dispatch(ctx, pr.Packet, handle)
					return true, nil
				},
			},
			OnClientError: func(err error) {
				f.logger.Error().Err(err).Msg("mqtt client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				f.logger.Warn().Int("reason", int(d.ReasonCode)).Msg("server disconnect")
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start mqtt session: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, f.opts.ConnectTimeout)
	defer cancel()
	if err := cm.AwaitConnection(connectCtx); err != nil {
		return fmt.Errorf("await broker connection: %w", err)
	}
	f.logger.Info().Str("broker", f.opts.BrokerURL).Msg("connected")

	<-ctx.Done()

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelDisconnect()
	_ = cm.Disconnect(disconnectCtx)
	return ctx.Err()
}

func (f *MQTTFeed) dispatch(ctx context.Context, pub *paho.Publish, handle Handler) {
	sourceID, ok := f.opts.Topics[pub.Topic]
	if !ok {
		f.logger.Debug().Str("topic", pub.Topic).Msg("publish on unmapped topic ignored")
		return
	}
	handle(ctx, Reading{
		SourceID: sourceID,
		Raw:      string(pub.Payload),
		At:       time.Now(),
	})
}

var _ Feed = (*MQTTFeed)(nil)
