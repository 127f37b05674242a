package notify_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"contact-service/internal/notify"
	"contact-service/internal/testutil/testnats"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNATSNotifier(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	t.Run("PublishesEvent", func(t *testing.T) {
		subject := "test.contact." + strings.ReplaceAll(t.Name(), "/", ".")

		notifier, err := notify.NewNATSNotifier(natsContainer.URL, subject, testLogger())
		require.NoError(t, err)
		defer notifier.Close()

		nc := natsContainer.Connect(t)
		defer nc.Close()

		received := make(chan *nats.Msg, 1)
		_, err = nc.Subscribe(subject, func(msg *nats.Msg) {
			received <- msg
		})
		require.NoError(t, err)
		require.NoError(t, nc.Flush())

		require.NoError(t, notifier.Notify(context.Background(), testEvent()))

		select {
		case msg := <-received:
			var event notify.Event
			require.NoError(t, json.Unmarshal(msg.Data, &event))
			assert.Equal(t, "sub-1", event.SubmissionID)
			assert.Equal(t, "ada@example.com", event.Email)
			assert.Equal(t, "Hello", event.Message)
		case <-time.After(2 * time.Second):
			t.Fatal("event not received on NATS within timeout")
		}
	})
}
