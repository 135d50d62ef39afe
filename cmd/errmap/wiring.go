package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kevin07696/error-mapping/internal/adapters/database"
	"github.com/kevin07696/error-mapping/internal/adapters/logging"
	"github.com/kevin07696/error-mapping/internal/adapters/rulesource"
	"github.com/kevin07696/error-mapping/internal/adapters/secrets"
	"github.com/kevin07696/error-mapping/internal/config"
	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/internal/mapping"
	"github.com/kevin07696/error-mapping/internal/services/classification"
	"github.com/kevin07696/error-mapping/pkg/resilience"
)

// ruleSource is an opened rule source and whatever it holds open
type ruleSource struct {
	ports.RuleSource
	db *database.PostgreSQLAdapter
}

func (s *ruleSource) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openSource builds the rule source selected by cfg.Rules.Source
func (a *app) openSource(ctx context.Context) (*ruleSource, error) {
	cfg := a.cfg

	var format mapping.Format
	if cfg.Rules.Format != "" {
		f, err := mapping.ParseFormat(cfg.Rules.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	switch cfg.Rules.Source {
	case config.SourceFile:
		return &ruleSource{RuleSource: rulesource.NewFileSource(cfg.Rules.Path, format)}, nil

	case config.SourceAWS:
		reader, err := secrets.NewAWSSecretsManagerAdapter(ctx, &secrets.AWSSecretsManagerConfig{
			Region:   cfg.AWS.Region,
			Profile:  cfg.AWS.Profile,
			Endpoint: cfg.AWS.Endpoint,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		return a.remote(rulesource.NewSecretSource(config.SourceAWS, reader, cfg.Rules.Path, format), nil), nil

	case config.SourceVault:
		vaultCfg := secrets.DefaultVaultConfig(cfg.Vault.Address)
		vaultCfg.AuthMethod = cfg.Vault.AuthMethod
		vaultCfg.Token = cfg.Vault.Token
		vaultCfg.RoleID = cfg.Vault.RoleID
		vaultCfg.SecretID = cfg.Vault.SecretID
		vaultCfg.Namespace = cfg.Vault.Namespace
		vaultCfg.MountPath = cfg.Vault.MountPath
		vaultCfg.KVVersion = cfg.Vault.KVVersion
		vaultCfg.ValueKey = cfg.Vault.ValueKey

		reader, err := secrets.NewVaultAdapter(ctx, vaultCfg, a.logger)
		if err != nil {
			return nil, err
		}
		return a.remote(rulesource.NewSecretSource(config.SourceVault, reader, cfg.Rules.Path, format), nil), nil

	case config.SourcePostgres:
		dbCfg := database.DefaultPostgreSQLConfig(cfg.Database.URL)
		dbCfg.MaxConns = cfg.Database.MaxConns
		db, err := database.NewPostgreSQLAdapter(ctx, dbCfg, a.logger)
		if err != nil {
			return nil, err
		}
		return a.remote(rulesource.NewPostgresSource(db.Pool(), cfg.Database.Table), db), nil

	default:
		return nil, fmt.Errorf("unsupported rule source %q", cfg.Rules.Source)
	}
}

// remote retries io failures of sources behind the network
func (a *app) remote(src ports.RuleSource, db *database.PostgreSQLAdapter) *ruleSource {
	retrying := rulesource.WithRetry(src, a.cfg.Rules.LoadRetries, resilience.DefaultLoadBackoff(), logging.NewZapLogger(a.logger))
	return &ruleSource{RuleSource: retrying, db: db}
}

// loadRules opens the configured source and loads a validated rule set
// within the configured load timeout
func (a *app) loadRules(ctx context.Context) (*mapping.RuleSet, *ruleSource, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Rules.LoadTimeout)
	defer cancel()

	src, err := a.openSource(ctx)
	if err != nil {
		return nil, nil, err
	}

	rules, err := rulesource.LoadRuleSet(ctx, src, logging.NewZapLogger(a.logger))
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return rules, src, nil
}

// newService loads the rules and builds the classification service over
// metrics. A failed load is counted on metrics before it is returned.
func (a *app) newService(ctx context.Context, metrics classification.MetricsRecorder) (*classification.Service, *ruleSource, error) {
	rules, src, err := a.loadRules(ctx)
	if err != nil {
		metrics.RecordRuleLoadFailure(string(domain.GetErrorCode(err)))
		return nil, nil, err
	}

	svc := classification.NewService(a.cfg.Rules.ReasonPattern, rules, metrics, logging.NewZapLogger(a.logger))
	return svc, src, nil
}

// watchReloads reloads the service rules from src each time a signal
// arrives, until ctx is done. A failed reload keeps the active rules.
func (a *app) watchReloads(ctx context.Context, signals <-chan os.Signal, service *classification.Service, src ports.RuleSource) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			reloadCtx, cancel := context.WithTimeout(ctx, a.cfg.Rules.LoadTimeout)
			_ = service.Reload(reloadCtx, src)
			cancel()
		}
	}
}
