package cli

import (
	"context"

	"github.com/gabapcia/chainkeeper/internal/chainregistry"

	"github.com/urfave/cli/v3"
)

// chainCommands returns the `chain` command group for managing registered
// chains and the active selection.
//
// Usage example:
//
//	chainkeeper chain add --id chain1 --name "Test Net" --node-ip https://node.example:8080
func chainCommands(cr chainregistry.Service) *cli.Command {
	return &cli.Command{
		Name:        "chain",
		Description: "Manage registered chains and the active chain selection.",
		Usage:       "chainkeeper chain [subcommand] [flags]",
		Commands: []*cli.Command{
			{
				Name:        "list",
				Description: "List every registered chain, most recently added first.",
				Action: func(ctx context.Context, c *cli.Command) error {
					chains, err := cr.List(ctx)
					if err != nil {
						return err
					}
					return printJSON(chains)
				},
			},
			{
				Name:        "add",
				Description: "Register a new chain. Existing accounts are mirrored onto it.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Unique chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Human-readable chain name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "node-ip",
						Usage:    "Node endpoint the chain is reached at",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "account-mode",
						Usage: "Account mode: permissionedWithCert, permissionedWithKey or public",
						Value: string(chainregistry.AccountModePublic),
					},
					&cli.StringFlag{
						Name:  "protocol",
						Usage: "Node protocol (e.g., GRPC, HTTP)",
					},
					&cli.StringFlag{
						Name:  "browser-link",
						Usage: "Block explorer base URL",
					},
					&cli.BoolFlag{
						Name:  "tls",
						Usage: "Whether the node requires TLS",
					},
					&cli.BoolFlag{
						Name:  "enable-gas",
						Usage: "Whether the chain meters gas",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					chains, err := cr.Add(ctx, chainregistry.Chain{
						ChainID:     c.String("id"),
						ChainName:   c.String("name"),
						NodeIP:      c.String("node-ip"),
						AccountMode: chainregistry.AccountMode(c.String("account-mode")),
						Protocol:    c.String("protocol"),
						BrowserLink: c.String("browser-link"),
						TLSEnable:   c.Bool("tls"),
						EnableGas:   c.Bool("enable-gas"),
					})
					if err != nil {
						return err
					}
					return printJSON(chains)
				},
			},
			{
				Name:        "remove",
				Description: "Delete a chain and its per-chain state. Official chains are refused.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Chain identifier to delete",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					chains, err := cr.Delete(ctx, c.String("id"))
					if err != nil {
						return err
					}
					return printJSON(chains)
				},
			},
			{
				Name:        "select",
				Description: "Mark a chain as the active selection.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Chain identifier to activate",
						Required: true,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					chain, err := cr.SetActive(ctx, c.String("id"))
					if err != nil {
						return err
					}
					return printJSON(chain)
				},
			},
			{
				Name:        "active",
				Description: "Show the active chain.",
				Action: func(ctx context.Context, c *cli.Command) error {
					chain, err := cr.Active(ctx)
					if err != nil {
						return err
					}
					return printJSON(chain)
				},
			},
		},
	}
}
