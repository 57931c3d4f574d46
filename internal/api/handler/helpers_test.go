package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/model"
)

func TestWriteOpResult_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	writeOpResult(rec, model.OK("done"))

	assert.Equal(t, 200, rec.Code)

	var body model.OpResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "done", body.Message)
}

func TestWriteOpResult_ValidationFailureIsClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeOpResult(rec, model.ValidationFailure("message not found"))

	assert.Equal(t, 400, rec.Code)
}

func TestWriteOpResult_TransportFailureIsBadGateway(t *testing.T) {
	rec := httptest.NewRecorder()
	writeOpResult(rec, model.TransportFailure("tool timed out"))

	assert.Equal(t, 502, rec.Code)
}
