package reconcile

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/financeplanner/aggregator-service/internal/config"
	"github.com/financeplanner/aggregator-service/internal/domain"
	"github.com/financeplanner/aggregator-service/pkg/downstream"
)

// memoryDrainer feeds canned payloads to the worker like a queue drain
// would.
type memoryDrainer struct {
	payloads [][]byte
}

func (d *memoryDrainer) Drain(_, _, _ string, handler func(body []byte) bool) (int, error) {
	processed := 0
	for _, payload := range d.payloads {
		if !handler(payload) {
			return processed, nil
		}
		processed++
	}
	return processed, nil
}

func workerConfig() config.Config {
	return config.Config{
		FinanceSaveIncomePath:   "/finance/income",
		FinanceUpdateIncomePath: "/finance/income/update",
		FinanceDeleteIncomePath: "/finance/income/delete",
		ReconcilerSchedule:      "@every 1m",
		ReconcilerCredential:    "Bearer internal-key",
	}
}

func newWorker(t *testing.T, financeURL string, drainer Drainer) *Worker {
	t.Helper()
	client := downstream.NewClient("finance-service", financeURL, downstream.WithRetry(0, time.Millisecond))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(drainer, client, workerConfig(), logger)
}

func marshalTask(t *testing.T, task domain.ReconciliationTask) []byte {
	t.Helper()
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("failed to marshal task: %v", err)
	}
	return body
}

func intPtr(v int) *int { return &v }

func TestProcessReplaysIncomeSave(t *testing.T) {
	var gotPath, gotCredential string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCredential = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.IncomeInformation{IncomeInformationID: 5})
	}))
	defer server.Close()

	worker := newWorker(t, server.URL, &memoryDrainer{})
	task := domain.ReconciliationTask{
		TaskID: "t-1",
		Action: domain.ReconcileSaveIncome,
		UserID: "user-1",
		Income: &domain.IncomeInformationRequest{EmployeeName: "Ada", UserID: "user-1", PayInformationID: 77},
	}

	if !worker.Process(marshalTask(t, task)) {
		t.Fatal("expected the save task to be acknowledged")
	}
	if gotPath != "/finance/income" {
		t.Fatalf("expected a create replay, got %s", gotPath)
	}
	if gotCredential != "Bearer internal-key" {
		t.Fatalf("expected the worker credential, got %q", gotCredential)
	}
}

func TestProcessReplaysIncomeUpdateWhenIDPresent(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(domain.IncomeInformation{IncomeInformationID: 4})
	}))
	defer server.Close()

	worker := newWorker(t, server.URL, &memoryDrainer{})
	task := domain.ReconciliationTask{
		TaskID:   "t-2",
		Action:   domain.ReconcileSaveIncome,
		UserID:   "user-1",
		IncomeID: intPtr(4),
		Income:   &domain.IncomeInformationRequest{UserID: "user-1"},
	}

	if !worker.Process(marshalTask(t, task)) {
		t.Fatal("expected the update task to be acknowledged")
	}
	if gotPath != "/finance/income/update/user-1/4" {
		t.Fatalf("expected an update replay, got %s", gotPath)
	}
}

func TestProcessReplaysIncomeDelete(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("true"))
	}))
	defer server.Close()

	worker := newWorker(t, server.URL, &memoryDrainer{})
	task := domain.ReconciliationTask{
		TaskID:   "t-3",
		Action:   domain.ReconcileDeleteIncome,
		UserID:   "user-1",
		IncomeID: intPtr(4),
	}

	if !worker.Process(marshalTask(t, task)) {
		t.Fatal("expected the delete task to be acknowledged")
	}
	if gotPath != "/finance/income/delete/user-1/4" {
		t.Fatalf("expected a delete replay, got %s", gotPath)
	}
}

func TestProcessRequeuesWhenReplayStillFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"still down"}`))
	}))
	defer server.Close()

	worker := newWorker(t, server.URL, &memoryDrainer{})
	task := domain.ReconciliationTask{
		TaskID: "t-4",
		Action: domain.ReconcileSaveIncome,
		UserID: "user-1",
		Income: &domain.IncomeInformationRequest{UserID: "user-1"},
	}

	if worker.Process(marshalTask(t, task)) {
		t.Fatal("expected the task to be requeued while the finance service fails")
	}
}

func TestProcessDropsUnreadableTask(t *testing.T) {
	worker := newWorker(t, "http://127.0.0.1:0", &memoryDrainer{})
	if !worker.Process([]byte("not json")) {
		t.Fatal("an unreadable task must be dropped, not requeued forever")
	}
}

func TestProcessDropsMalformedTasks(t *testing.T) {
	worker := newWorker(t, "http://127.0.0.1:0", &memoryDrainer{})

	// A save task without a payload and a delete task without an income id
	// can never succeed; they still fail (requeue) so an operator notices.
	save := domain.ReconciliationTask{TaskID: "t-5", Action: domain.ReconcileSaveIncome}
	if worker.Process(marshalTask(t, save)) {
		t.Fatal("a save task without a payload must not be acknowledged")
	}
	del := domain.ReconciliationTask{TaskID: "t-6", Action: domain.ReconcileDeleteIncome}
	if worker.Process(marshalTask(t, del)) {
		t.Fatal("a delete task without an income id must not be acknowledged")
	}
	unknown := domain.ReconciliationTask{TaskID: "t-7", Action: "income.unknown"}
	if !worker.Process(marshalTask(t, unknown)) {
		t.Fatal("an unknown action must be dropped")
	}
}

func TestDrainOnceProcessesQueuedTasks(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(domain.IncomeInformation{IncomeInformationID: calls})
	}))
	defer server.Close()

	drainer := &memoryDrainer{payloads: [][]byte{
		marshalTask(t, domain.ReconciliationTask{TaskID: "a", Action: domain.ReconcileSaveIncome, Income: &domain.IncomeInformationRequest{}}),
		marshalTask(t, domain.ReconciliationTask{TaskID: "b", Action: domain.ReconcileSaveIncome, Income: &domain.IncomeInformationRequest{}}),
	}}

	worker := newWorker(t, server.URL, drainer)
	worker.DrainOnce()

	if calls != 2 {
		t.Fatalf("expected both tasks to be replayed, got %d calls", calls)
	}
}
