// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the local account addresses.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/poichain/foundation/blockchain/address"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	accounts map[address.Address]string
}

// New constructs a name service with accounts from the zblock/accounts folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[address.Address]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		kp, err := signature.LoadKeyPair(fileName)
		if err != nil {
			return err
		}

		addr := address.FromPublicKey(kp.PublicKey)
		ns.accounts[addr] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(addr address.Address) string {
	name, exists := ns.accounts[addr]
	if !exists {
		return string(addr)
	}
	return name
}

// Resolve returns the address registered under the name. Anything that is
// not a known name is parsed as an encoded address.
func (ns *NameService) Resolve(name string) (address.Address, error) {
	for addr, n := range ns.accounts {
		if n == name {
			return addr, nil
		}
	}

	return address.FromEncoded(name)
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[address.Address]string {
	cpy := make(map[address.Address]string, len(ns.accounts))
	for addr, name := range ns.accounts {
		cpy[addr] = name
	}
	return cpy
}
