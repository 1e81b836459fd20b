package rabbitmq_test

import (
	"encoding/json"
	"errors"
	"testing"

	"lager/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChannel is a mock implementation of rabbitmq.Channel
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestClient_Publish(t *testing.T) {
	ch := new(MockChannel)
	client := rabbitmq.NewClientWithChannel(ch, "")

	var sent amqp.Publishing
	ch.On("Publish", "", rabbitmq.DefaultQueue, false, false, mock.AnythingOfType("amqp.Publishing")).
		Run(func(args mock.Arguments) { sent = args.Get(4).(amqp.Publishing) }).
		Return(nil).Once()

	require.NoError(t, client.Publish("article.deleted", map[string]string{"ean_code": "123"}))
	ch.AssertExpectations(t)

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, "article.deleted", sent.Type)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var event struct {
		ID   string            `json:"id"`
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sent.Body, &event))
	assert.Equal(t, sent.MessageId, event.ID)
	assert.Equal(t, "article.deleted", event.Type)
	assert.Equal(t, "123", event.Data["ean_code"])
}

func TestClient_PublishError(t *testing.T) {
	ch := new(MockChannel)
	client := rabbitmq.NewClientWithChannel(ch, "custom")
	ch.On("Publish", "", "custom", false, false, mock.Anything).Return(errors.New("channel closed")).Once()

	err := client.Publish("article.created", nil)
	assert.ErrorContains(t, err, "channel closed")
}

func TestClient_Close(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Close").Return(nil).Once()
	assert.NoError(t, rabbitmq.NewClientWithChannel(ch, "").Close())
	ch.AssertExpectations(t)

	var nilClient *rabbitmq.Client
	assert.Error(t, nilClient.Publish("article.created", nil))
}
