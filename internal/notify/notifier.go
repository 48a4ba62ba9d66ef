package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeBooking Type = "BOOKING"
	TypePayment Type = "PAYMENT"
)

// Notification: payload yang dikirim ke sink. Channel default APP.
type Notification struct {
	UserID  string `json:"user_id"`
	Type    Type   `json:"type"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Channel string `json:"channel"`
}

// Notifier: sink fire-and-forget. Gagal kirim tidak boleh membatalkan transaksi
// pemicunya — implementasi tidak mengembalikan error ke caller.
type Notifier interface {
	Send(ctx context.Context, userID string, typ Type, title, body string)
}

const EventNotificationRequested = "NotificationRequested"

// Envelope membungkus tiap event di topic notifikasi.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// KafkaNotifier menulis event notifikasi lewat producer async.
type KafkaNotifier struct {
	Producer *Producer
	Service  string
}

func (n *KafkaNotifier) Send(ctx context.Context, userID string, typ Type, title, body string) {
	payload := MustMarshal(Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Body:    body,
		Channel: "APP",
	})
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventNotificationRequested,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     n.Service,
		Payload:      payload,
	}
	// Partition key = user_id supaya notifikasi per user tetap berurutan.
	n.Producer.Publish([]byte(userID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventNotificationRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
