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

func newServiceHandler(r runner.Runner) *Service {
	ctrl := mail.NewServiceController(zerolog.Nop(), r, time.Second)
	services := map[string]mail.ManagedService{
		"postfix": mail.TransportService("postfix"),
		"dovecot": mail.DeliveryService("dovecot"),
		"slapd":   mail.DirectoryService("slapd"),
	}
	return NewService(ctrl, services, nil)
}

func TestServiceStatus_UnknownService(t *testing.T) {
	h := newServiceHandler(newScriptedRunner())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/services/nginx/status", nil)
	r = withChiURLParam(r, "service", "nginx")

	h.Status(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "unknown service")
}

func TestServiceStatus_Running(t *testing.T) {
	sr := newScriptedRunner()
	sr.on(runner.Result{ExitCode: 0, Stdout: "active\n"}, "systemctl", "is-active", "postfix")
	h := newServiceHandler(sr)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/services/postfix/status", nil)
	r = withChiURLParam(r, "service", "postfix")

	h.Status(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"running"`)
}

func TestServiceCheckConfig_NoCheckCommand(t *testing.T) {
	h := newServiceHandler(newScriptedRunner())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/services/slapd/check-config", nil)
	r = withChiURLParam(r, "service", "slapd")

	h.CheckConfig(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceReload_ToolFailure(t *testing.T) {
	sr := newScriptedRunner()
	sr.on(runner.Result{ExitCode: 1, Stderr: "not active"}, "postfix", "reload")
	h := newServiceHandler(sr)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/services/postfix/reload", nil)
	r = withChiURLParam(r, "service", "postfix")

	h.Reload(rec, r)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
