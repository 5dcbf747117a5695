package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Emit(t *testing.T) {
	t.Run("delivers to subscribed handlers in registration order", func(t *testing.T) {
		bus := New()

		var order []string
		bus.On(KindChainSelected, func(Event) { order = append(order, "first") })
		bus.On(KindChainSelected, func(Event) { order = append(order, "second") })
		bus.On(KindChainSelected, func(Event) { order = append(order, "third") })

		bus.Emit(ChainSelected{ChainID: "chain1"})
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("delivers the concrete payload", func(t *testing.T) {
		bus := New()

		var got TxStatusChanged
		bus.On(KindTxStatusChanged, func(e Event) {
			var ok bool
			got, ok = e.(TxStatusChanged)
			require.True(t, ok)
		})

		bus.Emit(TxStatusChanged{ChainID: "chain1", TxID: "0xabc", Status: "done", Code: 0})
		assert.Equal(t, "0xabc", got.TxID)
		assert.Equal(t, "done", got.Status)
	})

	t.Run("does not deliver to handlers of other kinds", func(t *testing.T) {
		bus := New()

		calls := 0
		bus.On(KindWalletChanged, func(Event) { calls++ })

		bus.Emit(ChainSelected{ChainID: "chain1"})
		assert.Zero(t, calls)
	})

	t.Run("emitting with no subscribers is a no-op", func(t *testing.T) {
		bus := New()
		bus.Emit(AccountChanged{Address: "0xabc"})
	})

	t.Run("runs synchronously on the emitting goroutine", func(t *testing.T) {
		bus := New()

		done := false
		bus.On(KindAccountChanged, func(Event) { done = true })

		bus.Emit(AccountChanged{Address: "0xabc"})
		assert.True(t, done)
	})
}

func TestBus_On(t *testing.T) {
	t.Run("unsubscribe removes exactly that registration", func(t *testing.T) {
		bus := New()

		var order []string
		off := bus.On(KindChainSelected, func(Event) { order = append(order, "first") })
		bus.On(KindChainSelected, func(Event) { order = append(order, "second") })

		off()
		bus.Emit(ChainSelected{ChainID: "chain1"})
		assert.Equal(t, []string{"second"}, order)
	})

	t.Run("unsubscribing twice is harmless", func(t *testing.T) {
		bus := New()

		calls := 0
		off := bus.On(KindChainSelected, func(Event) { calls++ })

		off()
		off()
		bus.Emit(ChainSelected{ChainID: "chain1"})
		assert.Zero(t, calls)
	})

	t.Run("same handler can subscribe more than once", func(t *testing.T) {
		bus := New()

		calls := 0
		handler := func(Event) { calls++ }
		bus.On(KindChainSelected, handler)
		off := bus.On(KindChainSelected, handler)

		bus.Emit(ChainSelected{ChainID: "chain1"})
		require.Equal(t, 2, calls)

		off()
		bus.Emit(ChainSelected{ChainID: "chain1"})
		assert.Equal(t, 3, calls)
	})
}
