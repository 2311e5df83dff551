// Package stream implements the live push-handler fan-out surface: an
// admin/debug UI client subscribes to a destination name over a
// WebSocket connection and receives every sample the destination
// registry would otherwise silently drop on the floor (spec.md §4.7's
// destination handlers are in-process only; this is the one
// out-of-tree consumer). It is grounded on the teacher's
// internal/websocket package, adapted from VM status/metrics/console
// fan-out to DataHub's Sample delivery.
package stream

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/threatflux/datahub/internal/datahub/sample"
)

// MessageType tags the kind of frame sent to a subscriber.
type MessageType string

const (
	MessageTypeSample     MessageType = "sample"
	MessageTypeConnection MessageType = "connection"
	MessageTypeError      MessageType = "error"
	MessageTypeHeartbeat  MessageType = "heartbeat"
)

// Message is the wire shape pushed to a subscriber.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func newMessage(t MessageType, data interface{}) *Message {
	return &Message{Type: t, Timestamp: time.Now(), Data: data}
}

// sampleData is the Data payload of a MessageTypeSample message.
type sampleData struct {
	Destination string      `json:"destination"`
	Observation string      `json:"observation"`
	Value       interface{} `json:"value"`
}

func sampleMessage(destination, observationPath string, s sample.Sample) *Message {
	return newMessage(MessageTypeSample, sampleData{
		Destination: destination,
		Observation: observationPath,
		Value:       rawValue(s),
	})
}

func errorMessage(code, message string) *Message {
	return newMessage(MessageTypeError, map[string]string{"code": code, "message": message})
}

func rawValue(s sample.Sample) interface{} {
	switch s.Type() {
	case sample.Trigger:
		return nil
	case sample.Boolean:
		return s.AsBoolean()
	case sample.Numeric:
		return s.AsNumeric()
	case sample.String:
		return s.AsString()
	case sample.JSON:
		return s.AsJSON()
	default:
		return nil
	}
}

// Client is a single subscribed WebSocket connection, fanning out the
// samples delivered to one destination name.
type Client struct {
	Conn        *websocket.Conn
	Send        chan *Message
	Destination string
	CreatedAt   time.Time
}
