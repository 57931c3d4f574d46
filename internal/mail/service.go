package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/metrics"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/runner"
)

// ManagedService describes one externally managed daemon: its systemd unit
// plus the native commands used for reload and syntax checking.
type ManagedService struct {
	Name       string
	Unit       string
	ReloadArgv []string
	CheckArgv  []string
}

// TransportService describes the mail transfer agent (Postfix).
func TransportService(unit string) ManagedService {
	return ManagedService{
		Name:       "transport",
		Unit:       unit,
		ReloadArgv: []string{"postfix", "reload"},
		CheckArgv:  []string{"postfix", "check"},
	}
}

// DeliveryService describes the delivery agent (Dovecot).
func DeliveryService(unit string) ManagedService {
	return ManagedService{
		Name:       "delivery",
		Unit:       unit,
		ReloadArgv: []string{"systemctl", "reload", unit},
		CheckArgv:  []string{"doveconf", "-n"},
	}
}

// DirectoryService describes the directory server (slapd). It has no native
// reload or syntax-check tool surface here; restart and status are enough.
func DirectoryService(unit string) ManagedService {
	return ManagedService{
		Name: "directory",
		Unit: unit,
	}
}

// ServiceController queries and controls the lifecycle of managed services
// via systemctl and the services' native tools.
type ServiceController struct {
	logger  zerolog.Logger
	runner  runner.Runner
	timeout time.Duration
}

func NewServiceController(logger zerolog.Logger, r runner.Runner, timeout time.Duration) *ServiceController {
	return &ServiceController{
		logger:  logger.With().Str("component", "service-controller").Logger(),
		runner:  r,
		timeout: timeout,
	}
}

// Status reports running/stopped for the service. Query failures are
// reported as "unknown", never as a fault.
func (c *ServiceController) Status(ctx context.Context, svc ManagedService) ServiceStatus {
	res, err := c.runner.Run(ctx, c.timeout, "systemctl", "is-active", svc.Unit)
	if err != nil {
		c.logger.Warn().Err(err).Str("unit", svc.Unit).Msg("status query failed")
		return ServiceStatus{State: "unknown", Detail: err.Error()}
	}

	state := strings.TrimSpace(res.Stdout)
	if res.ExitCode == 0 && state == "active" {
		return ServiceStatus{State: "running", Detail: state}
	}
	return ServiceStatus{State: "stopped", Detail: state}
}

// Restart restarts the service unconditionally, regardless of observed state.
func (c *ServiceController) Restart(ctx context.Context, svc ManagedService) model.OpResult {
	c.logger.Info().Str("unit", svc.Unit).Msg("restarting service")

	result := c.exec(ctx, fmt.Sprintf("%s restarted", svc.Name), "systemctl", "restart", svc.Unit)
	metrics.ServiceOperations.WithLabelValues(svc.Unit, "restart", metrics.Outcome(result.Success)).Inc()
	return result
}

// Reload reloads the service configuration. Reloading a stopped service
// fails; a no-op is not success.
func (c *ServiceController) Reload(ctx context.Context, svc ManagedService) model.OpResult {
	argv := svc.ReloadArgv
	if len(argv) == 0 {
		argv = []string{"systemctl", "reload", svc.Unit}
	}

	c.logger.Info().Str("unit", svc.Unit).Msg("reloading service configuration")

	result := c.exec(ctx, fmt.Sprintf("%s configuration reloaded", svc.Name), argv[0], argv[1:]...)
	metrics.ServiceOperations.WithLabelValues(svc.Unit, "reload", metrics.Outcome(result.Success)).Inc()
	return result
}

// CheckConfig validates the service configuration syntax. It never mutates
// running state; callers decide whether to follow up with Reload.
func (c *ServiceController) CheckConfig(ctx context.Context, svc ManagedService) model.OpResult {
	if len(svc.CheckArgv) == 0 {
		return model.ValidationFailure(fmt.Sprintf("%s has no configuration check command", svc.Name))
	}

	result := c.exec(ctx, fmt.Sprintf("%s configuration is valid", svc.Name), svc.CheckArgv[0], svc.CheckArgv[1:]...)
	metrics.ServiceOperations.WithLabelValues(svc.Unit, "check-config", metrics.Outcome(result.Success)).Inc()
	return result
}

// exec runs one command and converts its outcome into an OpResult.
func (c *ServiceController) exec(ctx context.Context, successMessage, name string, args ...string) model.OpResult {
	res, err := c.runner.Run(ctx, c.timeout, name, args...)
	if err != nil {
		return model.TransportFailure(err.Error())
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(res.Stdout)
		}
		return model.TransportFailure(fmt.Sprintf("%s exited %d: %s", name, res.ExitCode, detail))
	}
	return model.OK(successMessage)
}
