package notify_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"contact-service/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testEvent() notify.Event {
	return notify.Event{
		SubmissionID: "sub-1",
		Name:         "Ada",
		Email:        "ada@example.com",
		Message:      "Hello",
		ReceivedAt:   time.Now().UTC(),
	}
}

func TestWebhookNotifier_Delivers(t *testing.T) {
	var received notify.Event
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := notify.NewWebhookNotifier(server.URL, testLogger())

	err := notifier.Notify(context.Background(), testEvent())
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "sub-1", received.SubmissionID)
	assert.Equal(t, "ada@example.com", received.Email)
}

func TestWebhookNotifier_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := notify.NewWebhookNotifier(server.URL, testLogger())

	err := notifier.Notify(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut down before use

	notifier := notify.NewWebhookNotifier(server.URL, testLogger())

	err := notifier.Notify(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestMulti_AttemptsEverySink(t *testing.T) {
	var firstHit, secondHit bool

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHit = true
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHit = true
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	multi := notify.NewMulti(
		notify.NewWebhookNotifier(failing.URL, testLogger()),
		notify.NewWebhookNotifier(healthy.URL, testLogger()),
	)

	err := multi.Notify(context.Background(), testEvent())
	assert.Error(t, err, "joined error reports the failing sink")
	assert.True(t, firstHit)
	assert.True(t, secondHit, "later sinks still fire after an earlier failure")
}
