package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/database"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var (
	url     string
	to      string
	units   uint64
	micro   uint64
	message string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		kp, err := loadKeyPair()
		if err != nil {
			log.Fatal(err)
		}

		recipient, err := address.FromEncoded(to)
		if err != nil {
			log.Fatal(err)
		}

		tx, err := newTransfer(kp, recipient, primitive.FromUnits(units).Add(primitive.Amount(micro)), message, primitive.Now())
		if err != nil {
			log.Fatal(err)
		}

		data, err := json.Marshal(tx)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp.Status, string(body))
	},
}

// newTransfer builds and signs a transfer paying the minimum fee.
func newTransfer(kp signature.KeyPair, recipient address.Address, amount primitive.Amount, msg string, now primitive.TimeInstant) (*database.Tx, error) {
	var m database.Message
	if msg != "" {
		m = database.Message{
			Type:    database.MessageTypePlain,
			Payload: []byte(msg),
		}
	}

	tx := database.NewTransfer(database.NewAccount(kp), now, database.NewAccountFromAddress(recipient), amount, m)
	if err := tx.Sign(); err != nil {
		return nil, err
	}

	return tx, nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Uint64VarP(&units, "units", "v", 0, "Whole units to send.")
	sendCmd.Flags().Uint64VarP(&micro, "micro", "m", 0, "Micro units to send on top of the whole units.")
	sendCmd.Flags().StringVarP(&message, "message", "d", "", "Plain message to attach.")
}
