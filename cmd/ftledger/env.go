package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/ftledger/config"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// session groups resources of a single command run.
type session struct {
	cfg config.Config
	log *zap.Logger
	env *sim.Environment
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)

	if path := ctx.GlobalString("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}

	if path := ctx.GlobalString("db"); path != "" {
		cfg.DB.Type = "boltdb"
		cfg.DB.BoltDBOptions.FilePath = path
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level

	err := lvl.UnmarshalText([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build()
}

// openSession opens the configured environment. The session must be closed
// to persist committed changes.
func openSession(ctx *cli.Context) (*session, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(ctx.GlobalString("log-level"))
	if err != nil {
		return nil, err
	}

	envCfg, err := cfg.Ledger.Environment()
	if err != nil {
		return nil, err
	}
	envCfg.Logger = log

	st, err := storage.NewStore(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DB.Type, err)
	}

	env, err := sim.New(st, envCfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	log.Debug("environment opened",
		zap.String("db", cfg.DB.Type),
		zap.String("ledger", env.Account()),
		zap.Uint64("height", env.Height()))

	return &session{
		cfg: cfg,
		log: log,
		env: env,
	}, nil
}

func (s *session) close() error {
	err := s.env.Close()
	_ = s.log.Sync()
	return err
}

// run opens the session, passes it to f and closes it.
func run(ctx *cli.Context, f func(*session) error) (err error) {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := s.close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close environment: %w", closeErr)
		}
	}()

	return f(s)
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("missing amount")
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount '%s'", s)
	}

	return n, nil
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return fmt.Errorf("expected %d arguments, got %d", n, ctx.NArg())
	}
	return nil
}

func requireFlag(ctx *cli.Context, name string) (string, error) {
	v := ctx.String(name)
	if v == "" {
		return "", fmt.Errorf("missing --%s flag", name)
	}
	return v, nil
}
