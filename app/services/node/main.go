package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/memoledger/app/services/node/handlers"
	"github.com/ardanlabs/memoledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/memoledger/business/sys/metrics"
	"github.com/ardanlabs/memoledger/foundation/events"
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ardanlabs/memoledger/foundation/ledger/memo"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/disk"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/level"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/memory"
	"github.com/ardanlabs/memoledger/foundation/logger"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     []string      `conf:"default:*"`
		}
		Ledger struct {
			OwnerName   string `conf:"default:owner"`
			GenesisPath string `conf:"default:zblock/genesis.json"`
			Storage     string `conf:"default:disk,help:disk|level|memory"`
			DBPath      string `conf:"default:zblock/journal/"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "memo ledger node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Ledger Support

	// The owner is fixed when the ledger is deployed. It's the account of
	// the configured key file.
	path := fmt.Sprintf("%s%s.ecdsa", cfg.NameService.Folder, cfg.Ledger.OwnerName)
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return fmt.Errorf("unable to load private key for owner: %w", err)
	}

	gen, err := genesis.Load(cfg.Ledger.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	storage, err := openStorage(cfg.Ledger.Storage, cfg.Ledger.DBPath)
	if err != nil {
		return err
	}

	// The raw messages from the ledger are logged. The NewMemo notifications
	// are sent to any websocket client connected through the events package.
	evts := events.New(events.DefaultBuffer)
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
	}

	st, err := state.New(state.Config{
		OwnerID:   database.PublicKeyToAccountID(privateKey.PublicKey),
		Genesis:   gen,
		Storage:   storage,
		EvHandler: ev,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	unsubscribe := st.Subscribe(func(m memo.Memo) {
		s, err := public.NewMemoEvent(m)
		if err != nil {
			log.Errorw("newmemo", "ERROR", err)
			return
		}

		if dropped := evts.Send(s); dropped > 0 {
			log.Infow("newmemo", "status", "slow websocket clients", "dropped", dropped)
		}
	})
	defer unsubscribe()

	// =========================================================================
	// Metrics Support

	mtr := metrics.New()
	if err := mtr.RegisterLedger(st.ContractBalance, st.MemoCount); err != nil {
		return fmt.Errorf("registering ledger metrics: %w", err)
	}
	if err := mtr.RegisterEvents(evts.Count, evts.Dropped); err != nil {
		return fmt.Errorf("registering websocket metrics: %w", err)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, mtr, st)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Metrics:  mtr,
		State:    st,
		NS:       ns,
		Evts:     evts,
		Origins:  cfg.Web.CorsOrigins,
	})

	api := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// openStorage constructs the journal backend named in the configuration.
func openStorage(kind string, dbPath string) (database.Serializer, error) {
	switch kind {
	case "disk":
		return disk.New(dbPath)
	case "level":
		return level.New(dbPath)
	case "memory":
		return memory.New()
	}

	return nil, fmt.Errorf("unknown storage %q", kind)
}
