package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcabrerapy/concilia-be/internal/domain"
	"github.com/jcabrerapy/concilia-be/internal/eventbus"
	"github.com/jcabrerapy/concilia-be/internal/storage"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

// captureBus records published events instead of dispatching them, so the
// service can be tested without running workers.
type captureBus struct {
	published []eventbus.Event
	publishErr error
}

func (b *captureBus) Publish(ctx context.Context, event eventbus.Event) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, event)
	return nil
}

func (b *captureBus) Subscribe(eventType eventbus.EventType, consumer eventbus.Consumer) error {
	return nil
}

func (b *captureBus) Start(ctx context.Context) error    { return nil }
func (b *captureBus) Shutdown(ctx context.Context) error { return nil }

const testStatementCSV = `DIACONT,MOVIMIENTO,DESCRIP,DEBE,HABER,SALDO
02/01/2024,1,DEPOSITO EN EFECTIVO,0,"2.000.000","3.000.000"
03/01/2024,101,PAGO CHEQUE 45120,"500.000",0,"2.500.000"
`

const testVistaCSV = "NRO;TOTAL;FECHA MOVIMIENTO\n45120;500.000;02/01/2024\n45121;300.000;03/01/2024\n"

const testDeferredTxt = "0012 CHE  DIF 00123 01/15/2024 90001 E PANADERIA SAN JOSE 600.000,00\n"

func validRequest() RunRequest {
	return RunRequest{
		OpeningBalance: "1.000.000",
		Statement:      strings.NewReader(testStatementCSV),
		StatementName:  "extracto.csv",
		Vista:          strings.NewReader(testVistaCSV),
		Deferred:       strings.NewReader(testDeferredTxt),
	}
}

func TestCreateRun_Success(t *testing.T) {
	repo := storage.NewMemoryStore()
	bus := &captureBus{}
	svc := NewReconciliationService(repo, bus, logger.NewNop())

	runID, err := svc.CreateRun(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	run, err := repo.GetRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusProcessing, run.Status)

	require.Len(t, bus.published, 1)
	event := bus.published[0]
	assert.Equal(t, eventbus.EventTypeRun, event.Type)

	payload, ok := event.Payload.(eventbus.RunEvent)
	require.True(t, ok)
	assert.Equal(t, runID, payload.RunID)
	assert.Equal(t, "1000000", payload.Inputs.OpeningBalance.String())
	assert.Len(t, payload.Inputs.Statement, 2)
	assert.Len(t, payload.Inputs.Vista, 2)
	assert.Len(t, payload.Inputs.Deferred, 1)
}

func TestCreateRun_InvalidOpeningBalance(t *testing.T) {
	repo := storage.NewMemoryStore()
	bus := &captureBus{}
	svc := NewReconciliationService(repo, bus, logger.NewNop())

	req := validRequest()
	req.OpeningBalance = "no numerico"

	_, err := svc.CreateRun(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, bus.published)
}

func TestCreateRun_StatementMissingColumn(t *testing.T) {
	repo := storage.NewMemoryStore()
	bus := &captureBus{}
	svc := NewReconciliationService(repo, bus, logger.NewNop())

	req := validRequest()
	req.Statement = strings.NewReader("DIACONT,DESCRIP,DEBE,HABER,SALDO\n")

	_, err := svc.CreateRun(context.Background(), req)

	var missing *domain.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "statement", missing.Input)
	assert.Equal(t, "MOVIMIENTO", missing.Column)
	assert.Empty(t, bus.published)
}

func TestCreateRun_PublishFailureFailsRun(t *testing.T) {
	repo := storage.NewMemoryStore()
	bus := &captureBus{publishErr: context.DeadlineExceeded}
	svc := NewReconciliationService(repo, bus, logger.NewNop())

	_, err := svc.CreateRun(context.Background(), validRequest())
	require.Error(t, err)
}

func TestGetRun_NotFound(t *testing.T) {
	svc := NewReconciliationService(storage.NewMemoryStore(), &captureBus{}, logger.NewNop())

	_, err := svc.GetRun(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestGetResult_NotReady(t *testing.T) {
	repo := storage.NewMemoryStore()
	bus := &captureBus{}
	svc := NewReconciliationService(repo, bus, logger.NewNop())

	runID, err := svc.CreateRun(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.GetResult(context.Background(), runID)
	assert.ErrorIs(t, err, domain.ErrResultNotReady)
}
