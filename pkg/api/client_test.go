package api_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/signage/pkg/api"
)

func newServer(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL+"/", time.Second)
}

func TestClient_Lecturers(t *testing.T) {
	body := `{"lecturers": [{"id": 7, "title": "Dr", "name": "Ada Lovelace", "position": "Lecturer",
		"office_hours": "Mon 10-12", "office_location": "B12", "email": "ada@example.org", "phone": "123"}]}`
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lecturers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(body))
	})

	roster, err := client.Lecturers(context.Background())
	if err != nil {
		t.Fatalf("Lecturers: %v", err)
	}
	want := []api.Lecturer{{
		ID: 7, Title: "Dr", Name: "Ada Lovelace", Position: "Lecturer",
		OfficeHours: "Mon 10-12", OfficeLocation: "B12", Email: "ada@example.org", Phone: "123",
	}}
	if diff := cmp.Diff(want, roster.Lecturers); diff != "" {
		t.Errorf("lecturers mismatch (-want +got):\n%s", diff)
	}
	if roster.Digest != api.Digest([]byte(body)) {
		t.Error("digest does not match body")
	}
}

func TestClient_ContentStreamQuery(t *testing.T) {
	var gotStream string
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotStream = r.URL.Query().Get("stream")
		w.Write([]byte(`{"content": [{"id": 1, "type": "text", "title": "Hi", "body": "there"}]}`))
	})

	feed, err := client.Content(context.Background(), "lobby")
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if gotStream != "lobby" {
		t.Errorf("stream = %q, want lobby", gotStream)
	}
	if len(feed.Content) != 1 {
		t.Fatalf("items = %d, want 1", len(feed.Content))
	}
	var item struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(feed.Content[0], &item); err != nil || item.Type != "text" {
		t.Errorf("item = %s", feed.Content[0])
	}
}

func TestClient_DigestTracksChanges(t *testing.T) {
	bodies := []string{`{"content": []}`, `{"content": []}`, `{"content": [{"id": 2, "type": "text"}]}`}
	var n int
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bodies[n]))
		n++
	})

	var digests []string
	for range bodies {
		feed, err := client.Content(context.Background(), "")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		digests = append(digests, feed.Digest)
	}
	if digests[0] != digests[1] {
		t.Error("identical bodies produced different digests")
	}
	if digests[1] == digests[2] {
		t.Error("changed body produced the same digest")
	}
}

func TestClient_StatusError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.Lecturers(context.Background())
	var status *api.StatusError
	if !stderrors.As(err, &status) {
		t.Fatalf("err = %v, want *api.StatusError", err)
	}
	if status.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", status.StatusCode)
	}
}

func TestClient_MalformedBody(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lecturers": "nope"}`))
	})
	if _, err := client.Lecturers(context.Background()); err == nil {
		t.Error("malformed roster accepted")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Content(ctx, ""); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClient_BlobURL(t *testing.T) {
	client := api.NewClient("http://signage.local/", 0)
	if got := client.BlobURL(12); got != "http://signage.local/api/content/12/blob" {
		t.Errorf("BlobURL = %q", got)
	}
}
