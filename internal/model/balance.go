package model

// Balances is a two-currency holding. Fields are selected explicitly by
// currency; there is no string-keyed access.
type Balances struct {
	Eth float64 `json:"eth"`
	Dai float64 `json:"dai"`
}

// Get returns the balance held in c.
func (b *Balances) Get(c Currency) float64 {
	switch c {
	case ETH:
		return b.Eth
	case DAI:
		return b.Dai
	default:
		return 0
	}
}

// Credit adds amount to the balance held in c.
func (b *Balances) Credit(c Currency, amount float64) {
	switch c {
	case ETH:
		b.Eth += amount
	case DAI:
		b.Dai += amount
	}
}

// Debit subtracts amount from the balance held in c. Callers check funds first.
func (b *Balances) Debit(c Currency, amount float64) {
	switch c {
	case ETH:
		b.Eth -= amount
	case DAI:
		b.Dai -= amount
	}
}
