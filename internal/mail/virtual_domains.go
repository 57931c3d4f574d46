package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/metrics"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/runner"
)

// VirtualDomainRegistry keeps the transport agent's virtual domain map in
// step with the domain records. Domains live one per line in
// <configDir>/virtual_domains; after every change the hash map is rebuilt
// with postmap and the transport agent reloaded.
type VirtualDomainRegistry struct {
	logger    zerolog.Logger
	runner    runner.Runner
	configDir string
	timeout   time.Duration
}

func NewVirtualDomainRegistry(logger zerolog.Logger, r runner.Runner, configDir string, timeout time.Duration) *VirtualDomainRegistry {
	return &VirtualDomainRegistry{
		logger:    logger.With().Str("component", "virtual-domains").Logger(),
		runner:    r,
		configDir: configDir,
		timeout:   timeout,
	}
}

func (g *VirtualDomainRegistry) mapPath() string {
	return filepath.Join(g.configDir, "virtual_domains")
}

// Register adds a domain to the virtual domain map. A domain that is already
// present is a no-op success; the transport agent is not touched.
func (g *VirtualDomainRegistry) Register(ctx context.Context, domain string) model.OpResult {
	result := g.register(ctx, domain)
	metrics.VirtualDomainOperations.WithLabelValues("register", metrics.Outcome(result.Success)).Inc()
	return result
}

func (g *VirtualDomainRegistry) register(ctx context.Context, domain string) model.OpResult {
	domains, err := g.readMap()
	if err != nil {
		return model.TransportFailure(fmt.Sprintf("read virtual domain map: %v", err))
	}
	if slices.Contains(domains, domain) {
		return model.OK(fmt.Sprintf("domain %s is already registered", domain))
	}

	g.logger.Info().Str("domain", domain).Msg("registering virtual domain")

	if err := g.writeMap(append(domains, domain)); err != nil {
		return model.TransportFailure(fmt.Sprintf("write virtual domain map: %v", err))
	}
	if err := g.ensureMainCF(); err != nil {
		return model.TransportFailure(fmt.Sprintf("update main.cf: %v", err))
	}
	if result := g.apply(ctx); !result.Success {
		return result
	}
	return model.OK(fmt.Sprintf("domain %s registered with the transport agent", domain))
}

// Deregister removes a domain from the virtual domain map. A domain that is
// not in the map is a no-op success.
func (g *VirtualDomainRegistry) Deregister(ctx context.Context, domain string) model.OpResult {
	result := g.deregister(ctx, domain)
	metrics.VirtualDomainOperations.WithLabelValues("deregister", metrics.Outcome(result.Success)).Inc()
	return result
}

func (g *VirtualDomainRegistry) deregister(ctx context.Context, domain string) model.OpResult {
	domains, err := g.readMap()
	if err != nil {
		return model.TransportFailure(fmt.Sprintf("read virtual domain map: %v", err))
	}
	idx := slices.Index(domains, domain)
	if idx < 0 {
		return model.OK(fmt.Sprintf("domain %s is not registered", domain))
	}

	g.logger.Info().Str("domain", domain).Msg("deregistering virtual domain")

	if err := g.writeMap(slices.Delete(domains, idx, idx+1)); err != nil {
		return model.TransportFailure(fmt.Sprintf("write virtual domain map: %v", err))
	}
	if result := g.apply(ctx); !result.Success {
		return result
	}
	return model.OK(fmt.Sprintf("domain %s deregistered from the transport agent", domain))
}

func (g *VirtualDomainRegistry) readMap() ([]string, error) {
	data, err := os.ReadFile(g.mapPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var domains []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			domains = append(domains, line)
		}
	}
	return domains, nil
}

func (g *VirtualDomainRegistry) writeMap(domains []string) error {
	var content string
	if len(domains) > 0 {
		content = strings.Join(domains, "\n") + "\n"
	}
	return os.WriteFile(g.mapPath(), []byte(content), 0o644)
}

// ensureMainCF declares the virtual domain map in main.cf once.
func (g *VirtualDomainRegistry) ensureMainCF() error {
	mainCF := filepath.Join(g.configDir, "main.cf")
	content, err := os.ReadFile(mainCF)
	if err != nil {
		return err
	}
	if strings.Contains(string(content), "virtual_domains") {
		return nil
	}

	f, err := os.OpenFile(mainCF, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "\n# Virtual domains\nvirtual_domains = hash:%s\n", g.mapPath())
	return err
}

// apply rebuilds the hash map and reloads the transport agent.
func (g *VirtualDomainRegistry) apply(ctx context.Context) model.OpResult {
	res, err := g.runner.Run(ctx, g.timeout, "postmap", g.mapPath())
	if err != nil {
		return model.TransportFailure(err.Error())
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("postmap exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}

	res, err = g.runner.Run(ctx, g.timeout, "postfix", "reload")
	if err != nil {
		return model.TransportFailure(err.Error())
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("postfix reload exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	return model.OpResult{Success: true}
}
