package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodbridge/config"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrigger struct {
	handled []*service.Event
	err     error
}

func (s *stubTrigger) HandleEvent(_ context.Context, event *service.Event) error {
	s.handled = append(s.handled, event)

	return s.err
}

func newTestPushHandler(trigger usecase.TriggerUsecase) *PushHandler {
	return NewPushHandler(PushHandlerParams{
		Config:    &config.Config{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		TriggerUC: trigger,
	})
}

func pushRequest(t *testing.T, event *service.Event, attributes map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var msg PubSubMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString(payload)
	msg.Message.Attributes = attributes
	msg.Message.MessageID = "m-1"
	msg.Subscription = "projects/test/subscriptions/trigger"

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestPushHandler_ProcessesEvent(t *testing.T) {
	trigger := &stubTrigger{}
	handler := newTestPushHandler(trigger)

	event, err := service.NewEvent("evt-1", service.EventDonationCreated, "req-1",
		&service.DonationCreatedEvent{DonationID: "d-1"})
	require.NoError(t, err)

	c, rec := pushRequest(t, event, nil)
	require.NoError(t, handler.HandlePush(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, trigger.handled, 1)
	assert.Equal(t, "evt-1", trigger.handled[0].EventID)
	assert.Equal(t, service.EventDonationCreated, trigger.handled[0].Type)
}

func TestPushHandler_RetryableFailureReturns503(t *testing.T) {
	trigger := &stubTrigger{err: usecase.NewRetryableError(assert.AnError)}
	handler := newTestPushHandler(trigger)

	event, err := service.NewEvent("evt-2", service.EventUserCreated, "",
		&service.UserCreatedEvent{UserID: "u-1", Role: "donor"})
	require.NoError(t, err)

	c, rec := pushRequest(t, event, nil)
	require.NoError(t, handler.HandlePush(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPushHandler_NonRetryableFailureAcks(t *testing.T) {
	trigger := &stubTrigger{err: assert.AnError}
	handler := newTestPushHandler(trigger)

	event, err := service.NewEvent("evt-3", service.EventUserCreated, "",
		&service.UserCreatedEvent{UserID: "u-1", Role: "donor"})
	require.NoError(t, err)

	c, rec := pushRequest(t, event, nil)
	require.NoError(t, handler.HandlePush(c))

	// acknowledged so the platform stops redelivering a poison event
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPushHandler_InvalidBase64Returns400(t *testing.T) {
	trigger := &stubTrigger{}
	handler := newTestPushHandler(trigger)

	body := `{"message":{"data":"not-base64!!","messageId":"m-1"}}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, handler.HandlePush(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, trigger.handled)
}

func TestPushHandler_RequestIDAttributeWins(t *testing.T) {
	trigger := &stubTrigger{}
	handler := newTestPushHandler(trigger)

	event, err := service.NewEvent("evt-4", service.EventDonationCreated, "from-event",
		&service.DonationCreatedEvent{DonationID: "d-1"})
	require.NoError(t, err)

	var msg PubSubMessage
	requestID := handler.extractRequestID(context.Background(), &msg, event)
	assert.Equal(t, "from-event", requestID)

	msg.Message.Attributes = map[string]string{"request_id": "from-attr"}
	requestID = handler.extractRequestID(context.Background(), &msg, event)
	assert.Equal(t, "from-attr", requestID)
}
