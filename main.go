package main

import (
	"fmt"
	"os"

	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/escrow"
	"auction-marketplace/internal/managerService"
	"auction-marketplace/internal/payout"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/internal/settlement"
	"auction-marketplace/internal/token"
)

func main() {

	ledger := repository.NewMemoryLedger()
	bank := token.NewMemoryBank()

	prepopulateAccounts(bank)

	escrowSvc := escrow.NewService(ledger, bank)
	marketSvc := auctionService.NewService(ledger, escrowSvc, bank)
	managerSvc := managerService.NewService(ledger, bank, marketSvc)
	settlementSvc := settlement.NewService(ledger, bank, escrowSvc)
	payoutSvc := payout.NewService(ledger, bank)

	router := server.SetupRouter(server.Services{
		Market:     marketSvc,
		Managers:   managerSvc,
		Settlement: settlementSvc,
		Payouts:    payoutSvc,
	})

	port := getPort()
	fmt.Printf("Starting auction server on %s...\n", port)
	if err := router.Run(port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// prepopulateAccounts seeds funded bidder accounts in the in-memory bank
func prepopulateAccounts(bank *token.MemoryBank) {
	accounts := []struct {
		address string
		owner   string
		amount  uint64
	}{
		{address: "alice-token", owner: "alice", amount: 10_000},
		{address: "bob-token", owner: "bob", amount: 10_000},
		{address: "carol-token", owner: "carol", amount: 10_000},
		{address: "seller-token", owner: "seller", amount: 0},
	}

	for _, a := range accounts {
		if err := bank.CreateAccount(a.address, a.owner, "usd"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed account %s: %v\n", a.address, err)
			os.Exit(1)
		}
		if a.amount > 0 {
			if err := bank.MintTo(a.address, a.amount); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to fund account %s: %v\n", a.address, err)
				os.Exit(1)
			}
		}
	}
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}
