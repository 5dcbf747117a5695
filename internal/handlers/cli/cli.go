// Package cli is the command-line surface over the registries: chains,
// accounts, wallets, and the transaction tracker.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
	"github.com/gabapcia/chainkeeper/internal/chainregistry"
	"github.com/gabapcia/chainkeeper/internal/txtracker"
	"github.com/gabapcia/chainkeeper/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the chainkeeper CLI application.
//
// It registers all available command groups:
//
//   - `chain`: Manage registered chains and the active selection.
//   - `account`: Manage the global account book.
//   - `wallet`: Manage per-chain HD wallets.
//   - `tx`: Record, list, and reconcile tracked transactions.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - cr: The chainregistry service implementation used by chain commands.
//   - ar: The accountregistry service implementation used by account commands.
//   - wr: The walletregistry service implementation used by wallet commands.
//   - tt: The txtracker service implementation used by tx commands.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, cr chainregistry.Service, ar accountregistry.Service, wr walletregistry.Service, tt txtracker.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "chainkeeper",
		Description:           "Command-line interface for the chainkeeper chain, account, wallet, and transaction registries.",
		Usage:                 "chainkeeper [command] [flags]",
		Commands: []*cli.Command{
			chainCommands(cr),
			accountCommands(ar),
			walletCommands(wr),
			txCommands(tt),
		},
	}

	return app.Run(ctx, os.Args)
}

// printJSON renders v to stdout as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
