package outlets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/outlets" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"name":"ZUS Coffee SS 2","location":"Petaling Jaya","address":"17, Jalan SS2/67","opening_hours":"9:00AM-9:00PM","phone":"03-1234 5678","services":"Dine-in, Takeaway","latitude":3.1187,"longitude":101.6241}
			],
			"count": 1,
			"success": true
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	records, err := client.Lookup(context.Background(), "outlets in petaling jaya")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if gotQuery != "outlets in petaling jaya" {
		t.Fatalf("unexpected query sent: %q", gotQuery)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != "ZUS Coffee SS 2" || rec.Hours != "9:00AM-9:00PM" || rec.Lat != 3.1187 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestLookupReportedFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[],"count":0,"success":false}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Lookup(context.Background(), "anything"); err == nil {
		t.Fatal("expected error when the service reports failure")
	}
}

func TestLookupHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaboom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Lookup(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}
