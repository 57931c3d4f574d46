package directory

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

// BackupManager dumps and loads the directory database through the slapcat
// and slapadd tools. Restores stop the directory service first and restart
// it on every exit path, including failures.
type BackupManager struct {
	logger      zerolog.Logger
	runner      runner.Runner
	slapdUnit   string
	timeout     time.Duration
	longTimeout time.Duration
}

func NewBackupManager(logger zerolog.Logger, r runner.Runner, slapdUnit string, timeout, longTimeout time.Duration) *BackupManager {
	return &BackupManager{
		logger:      logger.With().Str("component", "directory-backup").Logger(),
		runner:      r,
		slapdUnit:   slapdUnit,
		timeout:     timeout,
		longTimeout: longTimeout,
	}
}

// BackupDatabase dumps the directory database to the given path.
func (m *BackupManager) BackupDatabase(ctx context.Context, path string) model.OpResult {
	m.logger.Info().Str("path", path).Msg("backing up directory database")

	res, err := m.runner.Run(ctx, m.longTimeout, "slapcat", "-n", "0", "-l", path)
	var result model.OpResult
	switch {
	case err != nil:
		result = model.TransportFailure(err.Error())
	case res.ExitCode != 0:
		result = model.TransportFailure(fmt.Sprintf("slapcat exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	default:
		result = model.OK(fmt.Sprintf("directory database backed up to %s", path))
	}
	metrics.DirectoryOperations.WithLabelValues("backup", metrics.Outcome(result.Success)).Inc()
	return result
}

// RestoreDatabase loads the directory database from the given path. The
// directory service is stopped for the load and restarted before returning,
// no matter how the load went; a directory left stopped is worse than any
// failed restore.
func (m *BackupManager) RestoreDatabase(ctx context.Context, path string) (result model.OpResult) {
	m.logger.Info().Str("path", path).Msg("restoring directory database")

	defer func() {
		// The caller's context may already be dead here (client gone,
		// deadline hit mid-load); the restart must still run.
		res, err := m.runner.Run(context.WithoutCancel(ctx), m.timeout, "systemctl", "start", m.slapdUnit)
		if err != nil || res.ExitCode != 0 {
			m.logger.Error().Err(err).Int("exit", res.ExitCode).Msg("failed to restart directory service after restore")
			if result.Success {
				result = model.TransportFailure("restore succeeded but the directory service failed to restart")
			} else {
				result.Message += "; the directory service also failed to restart"
			}
		}
		metrics.DirectoryOperations.WithLabelValues("restore", metrics.Outcome(result.Success)).Inc()
	}()

	res, err := m.runner.Run(ctx, m.timeout, "systemctl", "stop", m.slapdUnit)
	if err != nil {
		return model.TransportFailure(fmt.Sprintf("stop directory service: %v", err))
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("stop directory service: exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}

	res, err = m.runner.Run(ctx, m.longTimeout, "slapadd", "-n", "0", "-l", path)
	if err != nil {
		return model.TransportFailure(fmt.Sprintf("slapadd: %v", err))
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("slapadd exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}

	return model.OK(fmt.Sprintf("directory database restored from %s", path))
}
