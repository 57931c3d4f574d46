package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/edvin/mailpanel/internal/mail"
	"github.com/edvin/mailpanel/internal/runner"
)

func newQueueHandler(r runner.Runner) *Queue {
	logger := zerolog.Nop()
	inspector := mail.NewQueueInspector(logger, r, "postfix", time.Second)
	ctrl := mail.NewQueueController(logger, r, inspector, time.Second, time.Second)
	return NewQueue(inspector, ctrl, nil)
}

func TestQueueMessages_InvalidLimit(t *testing.T) {
	h := newQueueHandler(newScriptedRunner())
	rec := httptest.NewRecorder()

	h.Messages(rec, newRequest(http.MethodGet, "/queue/messages?limit=nope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid limit")
}

func TestQueueHold_EmptyID(t *testing.T) {
	h := newQueueHandler(newScriptedRunner())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/queue/messages//hold", nil)
	r = withChiURLParam(r, "id", "")

	h.Hold(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueHold_InvalidIDRejectedBeforeToolRuns(t *testing.T) {
	// The scripted runner has no expectations; reaching a tool would fail the
	// request with an unexpected-command transport error instead of a 400.
	h := newQueueHandler(newScriptedRunner())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/queue/messages/..%2Fetc/hold", nil)
	r = withChiURLParam(r, "id", "../etc")

	h.Hold(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueInfo_ToolFailure(t *testing.T) {
	sr := newScriptedRunner()
	sr.on(runner.Result{ExitCode: 69, Stderr: "queue unavailable"}, "postqueue", "-p")
	h := newQueueHandler(sr)
	rec := httptest.NewRecorder()

	h.Info(rec, newRequest(http.MethodGet, "/queue/info", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestQueueInfo_Success(t *testing.T) {
	sr := newScriptedRunner()
	sr.on(runner.Result{ExitCode: 0, Stdout: "Mail queue is empty"}, "postqueue", "-p")
	h := newQueueHandler(sr)
	rec := httptest.NewRecorder()

	h.Info(rec, newRequest(http.MethodGet, "/queue/info", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}
