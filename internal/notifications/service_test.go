package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"twisty/internal/config"
	"twisty/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, <-chan captured) {
	t.Helper()
	requests := make(chan captured, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyExportCompleted(context.Background(), "sexy", "out/sexy.mp4", 0); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "export completed",
			send: func(s notifications.Service) error {
				return s.NotifyExportCompleted(context.Background(), "sune", "/tmp/out/sune.mp4", 0.4)
			},
			expectTitle:   "twisty - Export Complete",
			expectMessage: "Exported sune\nFile: /tmp/out/sune.mp4\nTrimmed 0.400s of leading black",
			expectTags:    "twisty,export,completed",
		},
		{
			name: "export without trim",
			send: func(s notifications.Service) error {
				return s.NotifyExportCompleted(context.Background(), "", "", 0)
			},
			expectTitle:   "twisty - Export Complete",
			expectMessage: "Exported export",
			expectTags:    "twisty,export,completed",
		},
		{
			name: "batch completed",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 3, 90*time.Second+200*time.Millisecond)
			},
			expectTitle:    "twisty - Batch Complete",
			expectMessage:  "Batch complete: 3 exports in 1m30s",
			expectTags:     "twisty,batch,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("ffmpeg exploded "), "export sune")
			},
			expectTitle:    "twisty - Error",
			expectMessage:  "Error with export sune: ffmpeg exploded",
			expectTags:     "twisty,error,alert",
			expectPriority: "high",
		},
		{
			name: "test",
			send: func(s notifications.Service) error {
				return s.TestNotification(context.Background())
			},
			expectTitle:    "twisty - Test",
			expectMessage:  "Notification system test",
			expectTags:     "twisty,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, requests := newServer(t, http.StatusOK)
			if err := tc.send(serviceFor(srv.URL)); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := <-requests
			if got.title != tc.expectTitle {
				t.Fatalf("title = %q, want %q", got.title, tc.expectTitle)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("message = %q, want %q", got.body, tc.expectMessage)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("tags = %q, want %q", got.tags, tc.expectTags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("priority = %q, want %q", got.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("unexpected error: %v", err)
	}
}
