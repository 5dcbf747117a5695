package cli

import (
	"context"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"

	"github.com/urfave/cli/v3"
)

// accountCommands returns the `account` command group for managing the
// global account book. Accounts are mirrored across every registered chain,
// so add and remove operate globally while list and select are per chain.
//
// Usage example:
//
//	chainkeeper account add --chain chain1 --address 0xABC123... --name alice
func accountCommands(ar accountregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "account",
		Description: "Manage the account book shared by every registered chain.",
		Usage:       "chainkeeper account [subcommand] [flags]",
		Commands: []*cli.Command{
			{
				Name:        "list",
				Description: "List the accounts of a chain, optionally narrowed by kind or wallet.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier to list accounts of",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Restrict to a kind: all, hd or jbok",
						Value: string(accountregistry.KindAll),
					},
					&cli.StringFlag{
						Name:  "wallet",
						Usage: "Restrict to accounts derived from the given wallet id",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					accounts, err := ar.Accounts(ctx, c.String("chain"), accountregistry.Filter{
						Kind:     accountregistry.Kind(c.String("kind")),
						WalletID: c.String("wallet"),
					})
					if err != nil {
						return err
					}
					return printJSON(accounts)
				},
			},
			{
				Name:        "add",
				Description: "Register an account and mirror it onto every chain.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain the account is being added from; it becomes current there",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Account address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "org",
						Usage: "Organization the identity belongs to",
					},
					&cli.StringFlag{
						Name:  "wallet",
						Usage: "Wallet id the account was derived from, for HD accounts",
					},
					&cli.IntFlag{
						Name:  "wallet-index",
						Usage: "Derivation index within the wallet",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ar.AddAccount(ctx, c.String("chain"), accountregistry.Account{
						Address:     c.String("address"),
						Name:        c.String("name"),
						OrgID:       c.String("org"),
						WalletID:    c.String("wallet"),
						WalletIndex: int(c.Int("wallet-index")),
					})
				},
			},
			{
				Name:        "remove",
				Description: "Remove an address from every chain, deleting its key material.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Account address to remove",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					remaining, err := ar.DeleteAccount(ctx, c.String("address"))
					if err != nil {
						return err
					}
					return printJSON(remaining)
				},
			},
			{
				Name:        "select",
				Description: "Make an address the current account of a chain.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Account address to select",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ar.SetCurrentAccount(ctx, c.String("chain"), c.String("address"))
				},
			},
			{
				Name:        "current",
				Description: "Show the current account of the active chain.",
				Action: func(ctx context.Context, c *cli.Command) error {
					account, err := ar.CurrentAccount(ctx)
					if err != nil {
						return err
					}
					return printJSON(account)
				},
			},
			{
				Name:        "authorize",
				Description: "Replace the hosts an address is authorized for on a chain.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Account address",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "host",
						Usage: "Authorized host, repeatable",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ar.UpdateAuthHosts(ctx, c.String("chain"), c.String("address"), c.StringSlice("host"))
				},
			},
		},
	}
}
