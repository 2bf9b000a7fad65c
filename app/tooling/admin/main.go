// This program performs administrative tasks against a memo ledger journal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/memoledger/app/tooling/admin/commands"
	"github.com/ardanlabs/memoledger/foundation/ledger/database"
	"github.com/ardanlabs/memoledger/foundation/ledger/genesis"
	"github.com/ardanlabs/memoledger/foundation/ledger/state"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/disk"
	"github.com/ardanlabs/memoledger/foundation/ledger/storage/level"
	"github.com/ardanlabs/memoledger/foundation/logger"
	"github.com/ardanlabs/memoledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
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
	cfg := struct {
		conf.Version
		Args        conf.Args
		OwnerName   string `conf:"default:owner"`
		Folder      string `conf:"default:zblock/accounts/"`
		GenesisPath string `conf:"default:zblock/genesis.json"`
		Storage     string `conf:"default:disk,help:disk|level"`
		DBPath      string `conf:"default:zblock/journal/"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "memo ledger admin: memos | bals [account] | records",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ns, err := nameservice.New(cfg.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	privateKey, err := crypto.LoadECDSA(fmt.Sprintf("%s%s.ecdsa", cfg.Folder, cfg.OwnerName))
	if err != nil {
		return fmt.Errorf("unable to load private key for owner: %w", err)
	}

	gen, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	var storage database.Serializer
	switch cfg.Storage {
	case "disk":
		storage, err = disk.New(cfg.DBPath)
	case "level":
		storage, err = level.New(cfg.DBPath)
	default:
		err = fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	if err != nil {
		return err
	}

	// Constructing the state replays the journal. Nothing is written.
	st, err := state.New(state.Config{
		OwnerID: database.PublicKeyToAccountID(privateKey.PublicKey),
		Genesis: gen,
		Storage: storage,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	return processCommands(cfg.Args, st, storage, ns)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, st *state.State, storage database.Serializer, ns *nameservice.NameService) error {
	switch args.Num(0) {
	case "memos":
		if err := commands.Memos(os.Stdout, st, ns); err != nil {
			return fmt.Errorf("getting memos: %w", err)
		}

	case "bals":
		if err := commands.Balances(os.Stdout, args.Num(1), st, ns); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "records":
		if err := commands.Records(os.Stdout, storage); err != nil {
			return fmt.Errorf("getting records: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args.Num(0))
	}

	return nil
}
