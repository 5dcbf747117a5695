package ethereum

import (
	"context"
	"encoding/json"

	"github.com/gabapcia/chainkeeper/internal/pkg/types"
	"github.com/gabapcia/chainkeeper/internal/txtracker"
)

// receiptSuccessStatus is the post-Byzantium receipt status of a successful
// transaction.
const receiptSuccessStatus = uint64(1)

// ReceiptResponse represents a raw transaction receipt returned by the
// eth_getTransactionReceipt JSON-RPC method.
type ReceiptResponse struct {
	TransactionHash   string    `json:"transactionHash"`
	TransactionIndex  types.Hex `json:"transactionIndex"`
	BlockHash         string    `json:"blockHash"`
	BlockNumber       types.Hex `json:"blockNumber"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	CumulativeGasUsed types.Hex `json:"cumulativeGasUsed"`
	GasUsed           types.Hex `json:"gasUsed"`
	ContractAddress   string    `json:"contractAddress"`
	LogsBloom         string    `json:"logsBloom"`
	Type              types.Hex `json:"type"`
	EffectiveGasPrice types.Hex `json:"effectiveGasPrice"`
	Status            types.Hex `json:"status"`
}

// TransactionReceipt fetches the receipt for the given transaction hash. The
// node answers null while the transaction is still in the mempool, which is
// reported as a nil receipt with a nil error so callers can keep the entry
// pending.
func (c *client) TransactionReceipt(ctx context.Context, txID string) (*txtracker.Receipt, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionReceipt", txID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var res ReceiptResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}

	status, err := res.Status.Uint64()
	if err != nil {
		return nil, err
	}
	blockNumber, err := res.BlockNumber.Uint64()
	if err != nil {
		return nil, err
	}

	receipt := &txtracker.Receipt{
		Succeeded:   status == receiptSuccessStatus,
		BlockNumber: blockNumber,
	}
	if !receipt.Succeeded {
		receipt.Code = 1
	}

	return receipt, nil
}
