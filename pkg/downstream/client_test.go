package downstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/financeplanner/aggregator-service/internal/apperr"
)

type record struct {
	Name string `json:"name"`
}

func testClient(t *testing.T, url string, retryCount int) *Client {
	t.Helper()
	return NewClient("test-service", url, WithRetry(retryCount, time.Millisecond))
}

func TestFetchListParsesValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"a"},{"name":"b"}]`))
	}))
	defer server.Close()

	got, err := FetchList[record](context.Background(), testClient(t, server.URL, 0), "/records")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFetchListAbsentValueIsInternal(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "null body", body: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := FetchList[record](context.Background(), testClient(t, server.URL, 0), "/records")
			if apperr.KindOf(err) != apperr.KindInternal {
				t.Fatalf("expected internal classification, got %v", err)
			}
		})
	}
}

func TestUnauthorizedIsNeverRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// Body content must not matter for a 401.
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"ignored","details":"ignored"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)

	_, err := FetchList[record](context.Background(), client, "/records")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized classification, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one attempt, got %d", attempts)
	}

	attempts = 0
	_, err = Send[record, record](context.Background(), client, "/records", record{Name: "a"})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized classification on send, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one send attempt, got %d", attempts)
	}
}

func TestStructuredErrorBodyIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom","details":"x"}`))
	}))
	defer server.Close()

	_, err := Send[record, record](context.Background(), testClient(t, server.URL, 0), "/records", record{})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected classified error, got %v", err)
	}
	if appErr.Kind != apperr.KindUpstream {
		t.Fatalf("expected upstream classification, got %s", appErr.Kind)
	}
	if appErr.Message != "boom" || appErr.Details != "x" {
		t.Fatalf("expected message/details from the error body, got %q/%q", appErr.Message, appErr.Details)
	}
}

func TestErrorBodyProblemsAreInternal(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "unparseable body", body: "not json at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := Send[record, record](context.Background(), testClient(t, server.URL, 0), "/records", record{})
			if apperr.KindOf(err) != apperr.KindInternal {
				t.Fatalf("expected internal classification, got %v", err)
			}
		})
	}
}

func TestTransientStatusesAreRetried(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusRequestTimeout, http.StatusBadGateway} {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(status)
				return
			}
			w.Write([]byte(`[{"name":"a"}]`))
		}))

		got, err := FetchList[record](context.Background(), testClient(t, server.URL, 3), "/records")
		server.Close()
		if err != nil {
			t.Fatalf("status %d: expected recovery after retries, got %v", status, err)
		}
		if len(got) != 1 {
			t.Fatalf("status %d: unexpected result %+v", status, got)
		}
		if attempts != 3 {
			t.Fatalf("status %d: expected 3 attempts, got %d", status, attempts)
		}
	}
}

func TestNonTransientStatusIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid input"}`))
	}))
	defer server.Close()

	_, err := Send[record, record](context.Background(), testClient(t, server.URL, 3), "/records", record{})
	if apperr.KindOf(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream classification, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly one attempt for a 400, got %d", attempts)
	}
}

func TestRemoveReturnsBooleanPayload(t *testing.T) {
	for _, payload := range []string{"true", "false"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			w.Write([]byte(payload))
		}))

		got, err := testClient(t, server.URL, 0).Remove(context.Background(), "/records/1")
		server.Close()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := payload == "true"; got != want {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCredentialIsPropagated(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx := WithCredential(context.Background(), "Bearer token-123")
	if _, err := FetchList[record](ctx, testClient(t, server.URL, 0), "/records"); err != nil {
		// An empty list decodes to a non-nil empty slice, which is a value.
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHeader != "Bearer token-123" {
		t.Fatalf("expected credential to be forwarded unchanged, got %q", gotHeader)
	}
}

func TestCancelledContextStopsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient("test-service", server.URL, WithRetry(5, time.Hour))
	cancel()

	_, err := FetchList[record](ctx, client, "/records")
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if attempts > 1 {
		t.Fatalf("expected no retries after cancellation, got %d attempts", attempts)
	}
}
