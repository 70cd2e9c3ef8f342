package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiclink/api/internal/models"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender@x.com", "P@ss1word")
	receiver := env.createUser(t, "receiver@x.com", "P@ss1word")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"senderId":       sender.ID,
		"receiverId":     receiver.ID,
		"messageContent": "hey, nice profile!",
	})
	require.NoError(t, env.Messages.SendMessage(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, sender.ID, msg.SenderID)
	assert.Equal(t, receiver.ID, msg.ReceiverID)
	assert.Equal(t, "hey, nice profile!", msg.MessageContent)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestSendMessage_InvalidPair(t *testing.T) {
	env := newTestEnv(t)
	sender := env.createUser(t, "sender@x.com", "P@ss1word")

	_, c := env.doJSONRequest(http.MethodPost, "/api/v1/messages", map[string]interface{}{
		"senderId":       sender.ID,
		"receiverId":     uuid.New(),
		"messageContent": "hello?",
	})
	he := httpError(t, env.Messages.SendMessage(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "Invalid sender or receiver.", he.Message)
}

func TestSentAndReceivedMessages(t *testing.T) {
	env := newTestEnv(t)
	a := env.createUser(t, "a@x.com", "P@ss1word")
	b := env.createUser(t, "b@x.com", "P@ss1word")

	for _, content := range []string{"first", "second"} {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/messages", map[string]interface{}{
			"senderId":       a.ID,
			"receiverId":     b.ID,
			"messageContent": content,
		})
		require.NoError(t, env.Messages.SendMessage(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	recSent := httptest.NewRecorder()
	cSent := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recSent)
	cSent.SetParamNames("userId")
	cSent.SetParamValues(a.ID.String())
	require.NoError(t, env.Messages.GetSentMessages(cSent))

	var sent []models.Message
	require.NoError(t, json.Unmarshal(recSent.Body.Bytes(), &sent))
	require.Len(t, sent, 2)
	assert.Equal(t, "first", sent[0].MessageContent)
	assert.Equal(t, "second", sent[1].MessageContent)

	recRecv := httptest.NewRecorder()
	cRecv := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recRecv)
	cRecv.SetParamNames("userId")
	cRecv.SetParamValues(b.ID.String())
	require.NoError(t, env.Messages.GetReceivedMessages(cRecv))

	var received []models.Message
	require.NoError(t, json.Unmarshal(recRecv.Body.Bytes(), &received))
	assert.Len(t, received, 2)

	// The sender received nothing.
	recNone := httptest.NewRecorder()
	cNone := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recNone)
	cNone.SetParamNames("userId")
	cNone.SetParamValues(a.ID.String())
	require.NoError(t, env.Messages.GetReceivedMessages(cNone))

	var none []models.Message
	require.NoError(t, json.Unmarshal(recNone.Body.Bytes(), &none))
	assert.Empty(t, none)
}

func TestListMessages_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("userId")
	c.SetParamValues(uuid.NewString())

	he := httpError(t, env.Messages.GetSentMessages(c))
	assert.Equal(t, http.StatusNotFound, he.Code)
}
