// Package ethereum provides an implementation of the txtracker.ChainQuery
// interface for Ethereum-compatible nodes using a JSON-RPC client.
package ethereum

import (
	"github.com/gabapcia/chainkeeper/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/chainkeeper/internal/txtracker"
)

// client implements the txtracker.ChainQuery interface for Ethereum-based
// networks. It communicates with a node via a JSON-RPC client.
type client struct {
	conn jsonrpc.Client // Underlying JSON-RPC client used to interact with the node
}

// Ensure client implements the txtracker.ChainQuery interface at compile time.
var _ txtracker.ChainQuery = (*client)(nil)

// NewClient creates a new Ethereum chain query client using the provided
// JSON-RPC connection.
func NewClient(conn jsonrpc.Client) *client {
	return &client{
		conn: conn,
	}
}
