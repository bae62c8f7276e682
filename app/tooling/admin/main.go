// This program performs administrative tasks against a node's stored chain.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/poichain/app/tooling/admin/commands"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/database/storage"
	"github.com/ardanlabs/poichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
	"github.com/ardanlabs/poichain/foundation/logger"
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
		conf.Args
		State struct {
			DBPath      string `conf:"default:zblock/harvester1/"`
			Engine      string `conf:"default:disk"`
			GenesisPath string `conf:"default:zblock/genesis.json"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "chain administration",
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

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	var strg database.Serializer
	switch cfg.State.Engine {
	case "disk":
		strg, err = storage.NewDisk(cfg.State.DBPath)
	case "bolt":
		strg, err = storage.NewBolt(filepath.Join(cfg.State.DBPath, "blocks.db"))
	default:
		err = fmt.Errorf("unknown storage engine %q", cfg.State.Engine)
	}
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	// Replaying the chain validates every stored block, so a corrupted
	// store is reported here.
	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...))
	}

	st, err := state.New(state.Config{
		Storage:   strg,
		Genesis:   gen,
		EvHandler: ev,
	})
	if err != nil {
		strg.Close()
		return err
	}
	defer st.Shutdown()

	return processCommands(cfg.Args, st)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, st *state.State) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(args, os.Stdout, st); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "blocks":
		if err := commands.Blocks(args, os.Stdout, st); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}
	default:
		fmt.Println("bals [address]: show account balances at the tip")
		fmt.Println("blocks [from] [to]: show the stored blocks")
	}

	return nil
}
