package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
)

// Blocks writes the stored blocks between the optional from and to
// heights.
func Blocks(args conf.Args, w io.Writer, st *state.State) error {
	from, err := height(args.Num(1), primitive.NemesisHeight)
	if err != nil {
		return err
	}

	to, err := height(args.Num(2), state.QueryLatest)
	if err != nil {
		return err
	}

	blocks, err := st.QueryBlocksByHeight(from, to)
	if err != nil {
		return err
	}

	for _, block := range blocks {
		fmt.Fprintf(w, "Height: %d  Hash: %s  Forger: %s  Difficulty: %d  TimeStamp: %d  Txs: %d  Fees: %s\n",
			block.Height, block.Hash(), block.Signer, block.Difficulty, block.TimeStamp, len(block.Transactions), block.TotalFee)
	}

	return nil
}

func height(s string, def primitive.Height) (primitive.Height, error) {
	if s == "" {
		return def, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("height %q: %w", s, err)
	}

	return primitive.NewHeight(n)
}
