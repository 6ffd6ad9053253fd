package model

// Currency identifies one of the two assets held by the pool and the agents.
type Currency uint8

const (
	ETH Currency = iota
	DAI
)

func (c Currency) String() string {
	switch c {
	case ETH:
		return "ETH"
	case DAI:
		return "DAI"
	default:
		return "UNKNOWN"
	}
}

// Side is the direction of a trade from the counterparty's point of view.
type Side uint8

const (
	// BuyEth deposits DAI and withdraws ETH.
	BuyEth Side = iota
	// BuyDai deposits ETH and withdraws DAI.
	BuyDai
)

func (s Side) String() string {
	switch s {
	case BuyEth:
		return "BUY_ETH"
	case BuyDai:
		return "BUY_DAI"
	default:
		return "UNKNOWN"
	}
}

// Input returns the currency the counterparty pays into the pool.
func (s Side) Input() Currency {
	if s == BuyEth {
		return DAI
	}
	return ETH
}

// Output returns the currency the counterparty receives from the pool.
func (s Side) Output() Currency {
	if s == BuyEth {
		return ETH
	}
	return DAI
}

// Role selects an agent's decision rule.
type Role uint8

const (
	RoleRandomTrader Role = iota
	RoleArbitrageur
)

func (r Role) String() string {
	switch r {
	case RoleArbitrageur:
		return "ARBITRAGEUR"
	case RoleRandomTrader:
		return "RANDOM_TRADER"
	default:
		return "UNKNOWN"
	}
}
