package main

import "github.com/ardanlabs/poichain/app/wallet/cmd"

func main() {
	cmd.Execute()
}
