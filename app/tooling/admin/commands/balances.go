package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/state"
)

// Balances writes the balance and importance of the accounts that hold
// funds at the tip.
func Balances(args conf.Args, w io.Writer, st *state.State) error {
	latest := st.LatestBlock()
	fmt.Fprintf(w, "LatestBlock: %d %s\n\n", latest.Height, latest.Hash())

	imps := st.Importances()

	addrs := make([]address.Address, 0, len(imps))
	for addr := range imps {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	if only := args.Num(1); only != "" {
		addr, err := address.FromEncoded(only)
		if err != nil {
			return err
		}
		addrs = []address.Address{addr}
	}

	for _, addr := range addrs {
		as, err := st.QueryAccount(addr)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Account: %s  Balance: %s  Vested: %s  Importance: %d\n",
			addr, as.Info.Balance, as.Weighted.Vested(latest.Height), imps[addr])
	}

	return nil
}
