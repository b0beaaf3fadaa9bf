// Command shdw-addresses prints the program-derived addresses used by a
// wallet's storage accounts. It performs no network calls.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/shdw-drive/shdw-drive-go/pkg/blockchain"
)

func main() {
	owner := flag.String("owner", "", "wallet public key (base58)")
	seed := flag.Uint64("seed", 0, "account counter seed of the storage account")
	count := flag.Uint64("count", 1, "number of consecutive seeds to derive")
	flag.Parse()

	key, err := solana.PublicKeyFromBase58(*owner)
	if err != nil {
		log.Fatalf("Invalid -owner: %v", err)
	}
	if err := checkSeedRange(*seed, *count); err != nil {
		log.Fatalln(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	err = printAddresses(w, key, uint32(*seed), uint32(*count))
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		log.Fatalln(err)
	}
}

// checkSeedRange rejects ranges that leave the u32 seed space.
func checkSeedRange(seed, count uint64) error {
	if count == 0 {
		return fmt.Errorf("-count must be at least 1")
	}
	if seed > math.MaxUint32 || count-1 > math.MaxUint32-seed {
		return fmt.Errorf("seeds %d..%d exceed the u32 range", seed, seed+count-1)
	}
	return nil
}

func printAddresses(w io.Writer, owner solana.PublicKey, seed, count uint32) error {
	config, _ := blockchain.StorageConfig()
	userInfo, _ := blockchain.UserInfo(owner)
	fmt.Fprintf(w, "storage config\t%s\n", config)
	fmt.Fprintf(w, "user info\t%s\n", userInfo)

	ata, err := blockchain.OwnerTokenAccount(owner)
	if err != nil {
		return fmt.Errorf("derive token account: %w", err)
	}
	fmt.Fprintf(w, "SHDW token account\t%s\n", ata)

	for i := uint32(0); i < count; i++ {
		s := seed + i
		account, _ := blockchain.StorageAccount(owner, s)
		stake, _ := blockchain.StakeAccount(account)
		unstakeInfo, _ := blockchain.UnstakeInfo(account)
		unstake, _ := blockchain.UnstakeAccount(account)
		fmt.Fprintf(w, "\nseed %d\n", s)
		fmt.Fprintf(w, "storage account\t%s\n", account)
		fmt.Fprintf(w, "stake account\t%s\n", stake)
		fmt.Fprintf(w, "unstake info\t%s\n", unstakeInfo)
		fmt.Fprintf(w, "unstake account\t%s\n", unstake)
	}
	return nil
}
