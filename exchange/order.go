package exchange

//
// OrderType is an enum that represents the side of a limit order.
//
type OrderType int

const (
	Buy OrderType = iota
	Sell
)

//
// String returns the wire value of the order type. Exchanges in this family call a buy order a
// "bid" and a sell order an "ask".
//
func (o OrderType) String() string {
	return [...]string{"BID", "ASK"}[o]
}

//
// OrderState is an enum that filters order listings by their state.
//
type OrderState int

const (
	AnyState OrderState = iota // No filter is sent.
	Complete                   // Only orders that have been fully filled or cancelled.
	Pending                    // Only orders that are still open.
)

func (o OrderState) String() string {
	return [...]string{"", "COMPLETE", "PENDING"}[o]
}
