package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
)

// Worker: sisi delivery dari sink. Dedup per event_id via redis supaya redelivery
// kafka tidak menggandakan notifikasi ke user.
type Worker struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

func (w *Worker) HandleMessage(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != EventNotificationRequested {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, w.Redis, dkey)
	if exists {
		return nil
	}
	_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	var n Notification
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		return err
	}

	// Delivery sebenarnya (push/email) ada di luar scope; di sini cukup tercatat.
	w.Log.Info("notification delivered",
		zap.String("event_id", env.EventID),
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
		zap.String("title", n.Title),
	)
	return nil
}
