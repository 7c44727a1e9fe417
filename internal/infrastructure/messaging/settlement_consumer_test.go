package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockSettlementHandler struct {
	mock.Mock
}

func (m *MockSettlementHandler) SettleDonation(ctx context.Context, notice appdonation.SettlementNotice) (*appdonation.SettlementResult, error) {
	args := m.Called(ctx, notice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appdonation.SettlementResult), args.Error(1)
}

// recordingAcknowledger captures the acknowledgement of a delivery
type recordingAcknowledger struct {
	mu      sync.Mutex
	action  string
	requeue bool
}

func (a *recordingAcknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.action = "ack"
	return nil
}

func (a *recordingAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.action, a.requeue = "nack", requeue
	return nil
}

func (a *recordingAcknowledger) Reject(_ uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.action, a.requeue = "reject", requeue
	return nil
}

func delivery(body string, redelivered bool) (amqp.Delivery, *recordingAcknowledger) {
	ack := &recordingAcknowledger{}
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		MessageId:    "msg-1",
		Body:         []byte(body),
		Redelivered:  redelivered,
	}, ack
}

func TestSettlementConsumer_Handle(t *testing.T) {
	id := uuid.New()
	body := `{"donationId":"` + id.String() + `","outcome":"COMPLETED","transactionId":"txn-9"}`
	expected := appdonation.SettlementNotice{DonationID: id, Outcome: "COMPLETED", TransactionID: "txn-9"}

	tests := []struct {
		name        string
		body        string
		redelivered bool
		result      *appdonation.SettlementResult
		err         error
		action      string
		requeue     bool
	}{
		{name: "applied", body: body, result: &appdonation.SettlementResult{}, action: "ack"},
		{name: "already processed", body: body, result: &appdonation.SettlementResult{AlreadyProcessed: true}, action: "ack"},
		{name: "unknown donation", body: body, err: shared.NewNotFoundError("Donation"), action: "reject"},
		{name: "bad outcome", body: body, err: shared.NewValidationError("bad"), action: "reject"},
		{name: "transient failure", body: body, err: errors.New("db down"), action: "nack", requeue: true},
		{name: "transient failure redelivered", body: body, redelivered: true, err: shared.ErrConcurrentModification, action: "nack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := new(MockSettlementHandler)
			handler.On("SettleDonation", mock.Anything, expected).Return(tt.result, tt.err).Once()
			c := NewSettlementConsumer(config.AMQPConfig{}, handler, zaptest.NewLogger(t))

			d, ack := delivery(tt.body, tt.redelivered)
			c.Handle(context.Background(), d)

			assert.Equal(t, tt.action, ack.action)
			assert.Equal(t, tt.requeue, ack.requeue)
			handler.AssertExpectations(t)
		})
	}
}

func TestSettlementConsumer_MalformedBodyIsRejected(t *testing.T) {
	handler := new(MockSettlementHandler)
	c := NewSettlementConsumer(config.AMQPConfig{}, handler, zaptest.NewLogger(t))

	d, ack := delivery(`{not json`, false)
	c.Handle(context.Background(), d)

	assert.Equal(t, "reject", ack.action)
	assert.False(t, ack.requeue)
	handler.AssertNotCalled(t, "SettleDonation", mock.Anything, mock.Anything)
}

func TestSettlementConsumer_PanicRequeuesOnce(t *testing.T) {
	for _, redelivered := range []bool{false, true} {
		handler := new(MockSettlementHandler)
		handler.On("SettleDonation", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil, nil)
		c := NewSettlementConsumer(config.AMQPConfig{}, handler, zaptest.NewLogger(t))

		d, ack := delivery(`{"donationId":"`+uuid.NewString()+`","outcome":"FAILED"}`, redelivered)
		require.NotPanics(t, func() { c.Handle(context.Background(), d) })
		assert.Equal(t, "nack", ack.action)
		assert.Equal(t, !redelivered, ack.requeue, "redelivered=%v", redelivered)
	}
}

func TestSettlementConsumer_RunStopsOnCancel(t *testing.T) {
	c := NewSettlementConsumer(config.AMQPConfig{URL: "amqp://unused"}, new(MockSettlementHandler), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	c.dial = func(string) (*amqp.Connection, error) {
		calls++
		cancel()
		return nil, errors.New("refused")
	}

	assert.NoError(t, c.Run(ctx))
	assert.Equal(t, 1, calls)
}
