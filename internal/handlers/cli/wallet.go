package cli

import (
	"context"

	"github.com/gabapcia/chainkeeper/internal/walletregistry"

	"github.com/urfave/cli/v3"
)

// walletCommands returns the `wallet` command group for managing the HD
// wallets registered per chain.
//
// Usage example:
//
//	chainkeeper wallet add --chain chain1 --name main --mnemonic "abandon ability ..."
func walletCommands(wr walletregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "wallet",
		Description: "Manage the HD wallets registered per chain.",
		Usage:       "chainkeeper wallet [subcommand] [flags]",
		Commands: []*cli.Command{
			{
				Name:        "list",
				Description: "List the wallets of a chain, most recently added first.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier to list wallets of",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					wallets, err := wr.Wallets(ctx, c.String("chain"))
					if err != nil {
						return err
					}
					return printJSON(wallets)
				},
			},
			{
				Name:        "add",
				Description: "Register a wallet on a chain. It becomes the chain's current wallet.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "mnemonic",
						Usage:    "Recovery phrase",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					wallet, err := wr.AddWallet(ctx, c.String("chain"), walletregistry.Wallet{
						Name:     c.String("name"),
						Mnemonic: c.String("mnemonic"),
					})
					if err != nil {
						return err
					}
					return printJSON(wallet)
				},
			},
			{
				Name:        "remove",
				Description: "Delete a wallet. Refused while accounts derived from it still exist.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Wallet id to delete",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return wr.DeleteWallet(ctx, c.String("chain"), c.String("id"))
				},
			},
			{
				Name:        "select",
				Description: "Make a wallet the current selection of a chain.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Wallet id to select",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return wr.SetCurrentWallet(ctx, c.String("chain"), c.String("id"))
				},
			},
			{
				Name:        "current",
				Description: "Show the current wallet of a chain.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					wallet, err := wr.CurrentWallet(ctx, c.String("chain"))
					if err != nil {
						return err
					}
					return printJSON(wallet)
				},
			},
		},
	}
}
