package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	Run: func(cmd *cobra.Command, args []string) {
		path := getPrivateKeyPath()
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("key file %s already exists", path)
		}

		kp, err := signature.GenerateKeyPair()
		if err != nil {
			log.Fatal(err)
		}

		if err := os.MkdirAll(accountPath, 0755); err != nil {
			log.Fatal(err)
		}

		if err := crypto.SaveECDSA(path, kp.PrivateKey); err != nil {
			log.Fatal(err)
		}

		fmt.Println(address.FromPublicKey(kp.PublicKey))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
