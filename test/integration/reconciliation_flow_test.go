package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcabrerapy/concilia-be/internal/config"
	"github.com/jcabrerapy/concilia-be/internal/domain"
	"github.com/jcabrerapy/concilia-be/internal/eventbus"
	"github.com/jcabrerapy/concilia-be/internal/handler"
	"github.com/jcabrerapy/concilia-be/internal/recon"
	"github.com/jcabrerapy/concilia-be/internal/server"
	"github.com/jcabrerapy/concilia-be/internal/service"
	"github.com/jcabrerapy/concilia-be/internal/storage"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

const statementCSV = `DIACONT,MOVIMIENTO,DESCRIP,DEBE,HABER,SALDO
02/01/2024,1,DEPOSITO EN EFECTIVO,0,"2.000.000","3.000.000"
03/01/2024,101,PAGO CHEQUE 45120,"500.000",0,"2.500.000"
`

const vistaCSV = "NRO;TOTAL;FECHA MOVIMIENTO\n45120;500.000;02/01/2024\n45121;300.000;03/01/2024\n"

const deferredTxt = "0012 CHE  DIF 00123 01/15/2024 90001 E PANADERIA SAN JOSE 600.000,00\n"

func setupTestServer(t *testing.T) (*httptest.Server, eventbus.EventBus) {
	t.Helper()

	log := logger.NewNop()
	repo := storage.NewMemoryStore()

	bus := eventbus.New(log, &eventbus.Config{
		ChannelBuffer: 100,
		MaxRetries:    3,
	})

	engine := recon.NewEngine(recon.DefaultRules())
	runConsumer := eventbus.NewRunConsumer(engine, repo, log, 2)
	require.NoError(t, bus.Subscribe(eventbus.EventTypeRun, runConsumer))
	require.NoError(t, bus.Start(context.Background()))

	reconciliationService := service.NewReconciliationService(repo, bus, log)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService, log)
	healthHandler := handler.NewHealthHandler()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:          "8080",
			Host:          "0.0.0.0",
			MaxUploadSize: "16M",
		},
	}

	srv := server.New(cfg, log, reconciliationHandler, healthHandler)
	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)

	return testServer, bus
}

func uploadRun(t *testing.T, baseURL, statement, vista, deferred, openingBalance string) string {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	require.NoError(t, writer.WriteField("opening_balance", openingBalance))

	for _, file := range []struct {
		field, name, content string
	}{
		{"statement", "extracto.csv", statement},
		{"vista", "cheques_vista.csv", vista},
		{"deferred", "cheques_diferidos.txt", deferred},
	} {
		part, err := writer.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(baseURL+"/reconciliations", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	require.NotEmpty(t, accepted["run_id"])

	return accepted["run_id"]
}

func waitForCompletion(t *testing.T, baseURL, runID string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/reconciliations/" + runID + "/status")
		require.NoError(t, err)

		var run domain.Run
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		resp.Body.Close()

		if run.Status == domain.RunStatusCompleted {
			return
		}
		require.NotEqual(t, domain.RunStatusFailed, run.Status)

		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("run did not complete in time")
}

func TestReconciliationFlow(t *testing.T) {
	testServer, bus := setupTestServer(t)
	defer bus.Shutdown(context.Background())

	runID := uploadRun(t, testServer.URL, statementCSV, vistaCSV, deferredTxt, "1.000.000")
	waitForCompletion(t, testServer.URL, runID)

	resp, err := http.Get(testServer.URL + "/reconciliations/" + runID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		OpeningBalance           string `json:"opening_balance"`
		TotalIncome              string `json:"total_income"`
		TotalExpense             string `json:"total_expense"`
		OutstandingVistaTotal    string `json:"outstanding_vista_total"`
		OutstandingDeferredTotal string `json:"outstanding_deferred_total"`
		ClosingBalance           string `json:"closing_balance"`
		BankAdjustedBalance      string `json:"bank_adjusted_balance"`
		StatementClosingBalance  string `json:"statement_closing_balance"`
		Difference               string `json:"difference"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, "1000000", result.OpeningBalance)
	assert.Equal(t, "2000000", result.TotalIncome)
	// 0 non-check debits + 800,000 vista face value + 600,000 deferred.
	assert.Equal(t, "1400000", result.TotalExpense)
	assert.Equal(t, "300000", result.OutstandingVistaTotal)
	assert.Equal(t, "600000", result.OutstandingDeferredTotal)
	assert.Equal(t, "1600000", result.ClosingBalance)
	assert.Equal(t, "2500000", result.BankAdjustedBalance)
	assert.Equal(t, "2500000", result.StatementClosingBalance)
	assert.Equal(t, "0", result.Difference)
}

func TestReconciliationFlow_CheckLists(t *testing.T) {
	testServer, bus := setupTestServer(t)
	defer bus.Shutdown(context.Background())

	runID := uploadRun(t, testServer.URL, statementCSV, vistaCSV, deferredTxt, "1.000.000")
	waitForCompletion(t, testServer.URL, runID)

	resp, err := http.Get(testServer.URL + "/reconciliations/" + runID + "/checks?list=vista")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Items []domain.CheckDetail `json:"items"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))

	require.Equal(t, 1, listing.Total)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "45121", listing.Items[0].Number)

	resp2, err := http.Get(testServer.URL + "/reconciliations/" + runID + "/checks?list=bogus")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestReconciliationFlow_StructuralFailure(t *testing.T) {
	testServer, bus := setupTestServer(t)
	defer bus.Shutdown(context.Background())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("opening_balance", "1.000.000"))

	badStatement := "DIACONT,DESCRIP,DEBE,HABER,SALDO\n02/01/2024,DEPOSITO,0,100,100\n"
	for _, file := range []struct {
		field, name, content string
	}{
		{"statement", "extracto.csv", badStatement},
		{"vista", "cheques_vista.csv", vistaCSV},
		{"deferred", "cheques_diferidos.txt", deferredTxt},
	} {
		part, err := writer.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(testServer.URL+"/reconciliations", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var failure map[string]string
	require.NoError(t, json.Unmarshal(raw, &failure))
	assert.Equal(t, "statement", failure["input"])
	assert.Equal(t, "MOVIMIENTO", failure["column"])
}

func TestReconciliationFlow_UnknownRun(t *testing.T) {
	testServer, bus := setupTestServer(t)
	defer bus.Shutdown(context.Background())

	resp, err := http.Get(testServer.URL + "/reconciliations/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	testServer, bus := setupTestServer(t)
	defer bus.Shutdown(context.Background())

	resp, err := http.Get(testServer.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
