package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	genesisOut   string
	genesisUnits uint64
	chainID      uint16
)

// genesisCmd writes a genesis file that funds every account in the
// account folder.
var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Write a genesis file funding the local accounts",
	Run: func(cmd *cobra.Command, args []string) {
		kp, err := loadKeyPair()
		if err != nil {
			log.Fatal(err)
		}

		gen, err := buildGenesis(accountPath, kp, genesisUnits, chainID, time.Now().UTC().Truncate(time.Second))
		if err != nil {
			log.Fatal(err)
		}

		data, err := json.MarshalIndent(gen, "", "  ")
		if err != nil {
			log.Fatal(err)
		}

		if err := os.WriteFile(genesisOut, data, 0644); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("genesis written to %s: accounts[%d]\n", genesisOut, len(gen.Balances))
	},
}

// buildGenesis funds every key found in the folder with the units. The
// signer's key becomes the nemesis signer.
func buildGenesis(folder string, signer signature.KeyPair, units uint64, id uint16, date time.Time) (genesis.Genesis, error) {
	if date.Before(primitive.Epoch) {
		return genesis.Genesis{}, fmt.Errorf("date %s is before the network epoch", date)
	}

	gen := genesis.Genesis{
		Date:          date,
		ChainID:       id,
		NemesisSigner: signer.PublicKey,
		MaxChainSize:  primitive.MaxChainSize,
		Balances:      make(map[address.Address]uint64),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if filepath.Ext(fileName) != keyExtension {
			return nil
		}

		kp, err := signature.LoadKeyPair(fileName)
		if err != nil {
			return err
		}

		gen.Balances[address.FromPublicKey(kp.PublicKey)] = units
		return nil
	}

	if err := filepath.Walk(folder, fn); err != nil {
		return genesis.Genesis{}, fmt.Errorf("walking directory: %w", err)
	}

	if err := gen.Validate(); err != nil {
		return genesis.Genesis{}, err
	}

	return gen, nil
}

func init() {
	rootCmd.AddCommand(genesisCmd)
	genesisCmd.Flags().StringVarP(&genesisOut, "out", "o", "zblock/genesis.json", "Path of the genesis file to write.")
	genesisCmd.Flags().Uint64VarP(&genesisUnits, "units", "v", 1_000_000, "Units credited to every account.")
	genesisCmd.Flags().Uint16VarP(&chainID, "chain-id", "c", 1, "Chain id of the network.")
}
