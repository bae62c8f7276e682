package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/spf13/cobra"
)

type balance struct {
	Address    address.Address  `json:"address"`
	Balance    primitive.Amount `json:"balance"`
	Vested     primitive.Amount `json:"vested"`
	Unvested   primitive.Amount `json:"unvested"`
	Importance uint64           `json:"importance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	kp, err := loadKeyPair()
	if err != nil {
		log.Fatal(err)
	}

	addr := address.FromPublicKey(kp.PublicKey)
	fmt.Println("For Account:", addr)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/%s", url, addr))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		fmt.Println("account has never been seen on the chain")
		return
	}

	var bal balance
	if err := json.NewDecoder(resp.Body).Decode(&bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println("balance:   ", bal.Balance)
	fmt.Println("vested:    ", bal.Vested)
	fmt.Println("unvested:  ", bal.Unvested)
	fmt.Println("importance:", bal.Importance)
}
