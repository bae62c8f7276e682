package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/spf13/cobra"
)

// addressCmd represents the address command
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print address for the specific account",
	Run: func(cmd *cobra.Command, args []string) {
		kp, err := loadKeyPair()
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println("address:   ", address.FromPublicKey(kp.PublicKey))
		fmt.Println("public key:", kp.PublicKey)
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
