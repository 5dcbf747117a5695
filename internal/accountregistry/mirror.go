package accountregistry

// accountPalette is the rotating color assignment for new addresses. The
// index is the merged position of the address, so every chain derives the
// same color for the same address without coordination.
var accountPalette = [...]string{
	"#6A5BFF", "#2FCF8A", "#FF8A3C", "#3C9BFF",
	"#FF5B8A", "#8A6BE0", "#1FB6C4", "#E0B13C",
	"#5BD45B", "#C45BFF", "#FF6B5B", "#3CC4A0",
}

// paletteColor returns the color for the n-th registered address.
func paletteColor(n int) string {
	return accountPalette[n%len(accountPalette)]
}

// mergeAccounts folds incoming into existing, keyed by address. New addresses
// are prepended in incoming order; for an address present on both sides the
// incoming record wins, except Color and IsCurrent which stay with the
// existing entry so each chain keeps its own selection and the color assigned
// at first sight. The merge is idempotent and commutative over repeated
// applications of the same incoming set, which is what lets a crashed
// multi-chain fan-out self-heal on the next write.
func mergeAccounts(existing, incoming []Account) []Account {
	byAddress := make(map[string]int, len(existing))
	for i, a := range existing {
		byAddress[a.Address] = i
	}

	merged := make([]Account, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	var fresh []Account
	for _, in := range incoming {
		i, ok := byAddress[in.Address]
		if !ok {
			fresh = append(fresh, in)
			continue
		}

		in.Color = merged[i].Color
		in.IsCurrent = merged[i].IsCurrent
		merged[i] = in
	}

	return append(fresh, merged...)
}

// normalizeCurrent enforces the single-current invariant in place: the first
// flagged entry stays current and every later flag is cleared. When nothing
// is flagged and the list is non-empty, the head entry is promoted. Reports
// whether anything changed.
func normalizeCurrent(accounts []Account) bool {
	var (
		changed bool
		seen    bool
	)
	for i := range accounts {
		if !accounts[i].IsCurrent {
			continue
		}
		if seen {
			accounts[i].IsCurrent = false
			changed = true
			continue
		}
		seen = true
	}

	if !seen && len(accounts) > 0 {
		accounts[0].IsCurrent = true
		changed = true
	}

	return changed
}

// currentOf returns the index of the current account, or -1.
func currentOf(accounts []Account) int {
	for i, a := range accounts {
		if a.IsCurrent {
			return i
		}
	}
	return -1
}
