// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/myo_osc/internal/osc"
)

// publisher is the subset of mqtt.Client used by MQTTSink.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink mirrors each OSC packet to the topic <prefix><address>, e.g.
// "osc/myo/emg". Publishes are QoS 0 and never waited on.
type MQTTSink struct {
	client publisher
	prefix string
}

// NewMQTTSink connects to broker and returns a sink publishing under prefix.
func NewMQTTSink(broker, clientID, prefix string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return newMQTTSink(client, prefix), nil
}

func newMQTTSink(client publisher, prefix string) *MQTTSink {
	return &MQTTSink{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the topic a packet for address is published on.
func (s *MQTTSink) Topic(address string) string {
	if s.prefix == "" {
		return strings.TrimPrefix(address, "/")
	}
	return s.prefix + address
}

func (s *MQTTSink) Send(p []byte) error {
	addr, err := osc.Address(p)
	if err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	// paho queues the payload; the caller's buffer is reused.
	payload := append([]byte(nil), p...)
	s.client.Publish(s.Topic(addr), 0, false, payload)
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
