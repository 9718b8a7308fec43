package sender

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammad-anas65/TaskCash/internal/lib/smtp"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func encodeResetEmail(t *testing.T, msg models.ResetEmail) []byte {
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestSendPasswordReset_Success(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@taskcash.pk")
	transport.On("Connect").Return(client, nil)
	client.On("Mail", "noreply@taskcash.pk").Return(nil)
	client.On("Rcpt", "ali@example.com").Return(nil)
	client.On("Data").Return(writer, nil)
	writer.On("Write", mock.MatchedBy(func(p []byte) bool {
		body := string(p)
		// the mail must carry the reset link with both query params
		return strings.Contains(body, "https://taskcash.pk/reset?token=tok-1&email=ali@example.com") &&
			strings.Contains(body, "Subject: TaskCash password reset")
	})).Return(100, nil)
	writer.On("Close").Return(nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	svc := NewSenderService(transport, "https://taskcash.pk/reset", newNoopLogger())

	err := svc.SendPasswordReset(encodeResetEmail(t, models.ResetEmail{
		Email: "ali@example.com",
		Token: "tok-1",
	}))
	assert.NoError(t, err)

	transport.AssertExpectations(t)
	client.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestSendPasswordReset_MalformedMessage(t *testing.T) {
	transport := new(MockTransport)
	svc := NewSenderService(transport, "https://taskcash.pk/reset", newNoopLogger())

	err := svc.SendPasswordReset([]byte("not a json"))
	assert.Error(t, err)
	transport.AssertNotCalled(t, "Connect")
}

func TestSendPasswordReset_ConnectFails(t *testing.T) {
	transport := new(MockTransport)
	transport.On("GetSMTPUser").Return("noreply@taskcash.pk")
	transport.On("Connect").Return(nil, errors.New("dial tcp: connection refused"))

	svc := NewSenderService(transport, "https://taskcash.pk/reset", newNoopLogger())

	err := svc.SendPasswordReset(encodeResetEmail(t, models.ResetEmail{
		Email: "ali@example.com",
		Token: "tok-1",
	}))
	assert.Error(t, err)
}
