package smtp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ClientMock struct {
	mock.Mock
	buf bytes.Buffer
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (m *ClientMock) Mail(from string) error { return m.Called(from).Error(0) }
func (m *ClientMock) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return nopWriteCloser{&m.buf}, nil
}
func (m *ClientMock) Quit() error  { return m.Called().Error(0) }
func (m *ClientMock) Close() error { return m.Called().Error(0) }

type DialerMock struct{ mock.Mock }

func (m *DialerMock) Connect() (Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Client), args.Error(1)
}

func TestMessage_Bytes(t *testing.T) {
	msg := Message{
		From:    "noreply@example.com",
		To:      "user@example.com",
		Subject: "Verify your email",
		Body:    "line one\nline two",
	}

	got := string(msg.Bytes())
	assert.Contains(t, got, "From: noreply@example.com\r\n")
	assert.Contains(t, got, "To: user@example.com\r\n")
	assert.Contains(t, got, "Subject: Verify your email\r\n")
	assert.Contains(t, got, "\r\n\r\nline one\r\nline two")
}

func TestSend(t *testing.T) {
	msg := Message{From: "noreply@example.com", To: "user@example.com", Subject: "Hi", Body: "hello"}

	t.Run("success", func(t *testing.T) {
		client := new(ClientMock)
		client.On("Mail", msg.From).Return(nil)
		client.On("Rcpt", msg.To).Return(nil)
		client.On("Data").Return(nil)
		client.On("Quit").Return(nil)
		client.On("Close").Return(nil)
		dialer := new(DialerMock)
		dialer.On("Connect").Return(client, nil)

		require.NoError(t, Send(dialer, msg))
		assert.Contains(t, client.buf.String(), "hello")
		client.AssertExpectations(t)
	})

	t.Run("connect failure", func(t *testing.T) {
		dialer := new(DialerMock)
		dialer.On("Connect").Return(nil, errors.New("dial tcp: refused"))

		err := Send(dialer, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refused")
	})

	t.Run("recipient rejected", func(t *testing.T) {
		client := new(ClientMock)
		client.On("Mail", msg.From).Return(nil)
		client.On("Rcpt", msg.To).Return(errors.New("550 no such user"))
		client.On("Close").Return(nil)
		dialer := new(DialerMock)
		dialer.On("Connect").Return(client, nil)

		err := Send(dialer, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rcpt to")
		client.AssertNotCalled(t, "Data")
	})
}
