package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlackNotifierDisabledWithoutWebhook(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	notifier := NewSlackNotifier("", logger)

	if notifier.Enabled() {
		t.Error("notifier with empty webhook url must be disabled")
	}
	if !strings.Contains(buf.String(), "SLACK_WEBHOOK_URL") {
		t.Errorf("startup warning not logged: %q", buf.String())
	}

	buf.Reset()
	if notifier.SendOrderMessage(context.Background(), testOrder()) {
		t.Error("disabled notifier returned true")
	}
	if buf.Len() != 0 {
		t.Errorf("disabled notifier logged per call: %q", buf.String())
	}
}

func TestSlackNotifierSendOrderMessage(t *testing.T) {
	var payload struct {
		Text        string `json:"text"`
		Attachments []struct {
			Fields []struct {
				Title string `json:"title"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"attachments"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("webhook body is not JSON: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewSlackNotifier(srv.URL, log.New(&bytes.Buffer{}, "", 0))

	order := testOrder()
	order.Company = "Acme LLC"
	if !notifier.SendOrderMessage(context.Background(), order) {
		t.Fatal("expected successful send")
	}

	if !strings.Contains(payload.Text, "ORD-A1B2C3D4") {
		t.Errorf("message text %q does not reference the order id", payload.Text)
	}
	if len(payload.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(payload.Attachments))
	}

	titles := map[string]string{}
	for _, f := range payload.Attachments[0].Fields {
		titles[f.Title] = f.Value
	}
	if titles["Order ID"] != "ORD-A1B2C3D4" {
		t.Errorf("Order ID field = %q", titles["Order ID"])
	}
	if titles["Company"] != "Acme LLC" {
		t.Errorf("Company field = %q", titles["Company"])
	}
	if !strings.Contains(titles["Customer"], "ana@example.com") {
		t.Errorf("Customer field = %q", titles["Customer"])
	}
}

func TestSlackNotifierTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	notifier := NewSlackNotifier(srv.URL, log.New(&buf, "", 0))

	if notifier.SendOrderMessage(context.Background(), testOrder()) {
		t.Error("expected false on provider error")
	}
	if !strings.Contains(buf.String(), "slack webhook error") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestSlackNotifierUnreachableHost(t *testing.T) {
	// Сервер закрыт до отправки - чистая сетевая ошибка
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	notifier := NewSlackNotifier(url, log.New(&bytes.Buffer{}, "", 0))
	if notifier.SendOrderMessage(context.Background(), testOrder()) {
		t.Error("expected false on network error")
	}
}
