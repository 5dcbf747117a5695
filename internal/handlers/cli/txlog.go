package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/chainkeeper/internal/txtracker"

	"github.com/urfave/cli/v3"
)

// txCommands returns the `tx` command group for recording, listing, and
// reconciling tracked transactions.
//
// Usage example:
//
//	chainkeeper tx append --chain chain1 --id 0xDEF456... --account 0xABC123...
func txCommands(tt txtracker.Service) *cli.Command {
	return &cli.Command{
		Name:        "tx",
		Description: "Record, list, and reconcile tracked transactions.",
		Usage:       "chainkeeper tx [subcommand] [flags]",
		Commands: []*cli.Command{
			{
				Name:        "append",
				Description: "Record a freshly submitted transaction as pending.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Transaction id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "account",
						Usage: "Submitting account address",
					},
					&cli.StringFlag{
						Name:  "account-name",
						Usage: "Submitting account display name",
					},
					&cli.StringFlag{
						Name:  "to",
						Usage: "Recipient address",
					},
					&cli.StringFlag{
						Name:  "amount",
						Usage: "Transferred amount",
					},
					&cli.StringFlag{
						Name:  "node",
						Usage: "Node endpoint the transaction was submitted to",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return tt.Append(ctx, txtracker.TxLog{
						TxID:        c.String("id"),
						ChainID:     c.String("chain"),
						AccountID:   c.String("account"),
						AccountName: c.String("account-name"),
						FromAddress: c.String("account"),
						ToAddress:   c.String("to"),
						Amount:      c.String("amount"),
						NodeIP:      c.String("node"),
					})
				},
			},
			{
				Name:        "list",
				Description: "List a chain's tracked transactions, newest first.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "account",
						Usage: "Restrict to entries submitted by the given address",
					},
					&cli.StringFlag{
						Name:  "node",
						Usage: "Restrict to entries submitted through the given node endpoint",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					logs, err := tt.Logs(ctx, c.String("chain"), txtracker.Filter{
						AccountAddress: c.String("account"),
						NodeEndpoint:   c.String("node"),
					})
					if err != nil {
						return err
					}
					return printJSON(logs)
				},
			},
			{
				Name:        "reconcile",
				Description: "Reconcile pending transactions against the chain once.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "chain",
						Usage:    "Chain identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "Reconcile a single transaction instead of every pending one",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					if txID := c.String("id"); txID != "" {
						return tt.Reconcile(ctx, c.String("chain"), txID)
					}
					return tt.ReconcileAll(ctx, c.String("chain"))
				},
			},
			{
				Name:        "watch",
				Description: "Run the background reconciliation loop until interrupted.",
				Usage:       "Starts the periodic sweep. Terminates gracefully on Ctrl+C or termination signals.",
				Action: func(ctx context.Context, c *cli.Command) error {
					quit := make(chan os.Signal, 1)
					defer close(quit)

					signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

					if err := tt.Start(ctx); err != nil {
						return err
					}
					defer tt.Close()

					<-quit
					return nil
				},
			},
		},
	}
}
