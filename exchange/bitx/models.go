package bitx

import (
	"github.com/shopspring/decimal"
)

// NOTE ~> The models below can be filled in from any successful response via
//  exchange.Response.Decode. BitX quotes amounts as JSON strings, which decimal.Decimal accepts as
//  well as plain numbers.

type Ticker struct {
	Pair                string          `json:"pair"`
	Timestamp           int64           `json:"timestamp"`
	Bid                 decimal.Decimal `json:"bid"`
	Ask                 decimal.Decimal `json:"ask"`
	LastTrade           decimal.Decimal `json:"last_trade"`
	Rolling24HourVolume decimal.Decimal `json:"rolling_24_hour_volume"`
}

type Tickers struct {
	Tickers []Ticker `json:"tickers"`
}

type OrderBookEntry struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

//
// OrderBook holds both sides of a pair's book, best price first.
//
type OrderBook struct {
	Timestamp int64            `json:"timestamp"`
	Bids      []OrderBookEntry `json:"bids"`
	Asks      []OrderBookEntry `json:"asks"`
}

type Trade struct {
	Timestamp int64           `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
}

type Trades struct {
	Trades []Trade `json:"trades"`
}

type Order struct {
	OrderID             string          `json:"order_id"`
	Pair                string          `json:"pair"`
	State               string          `json:"state"`
	Type                string          `json:"type"`
	CreationTimestamp   int64           `json:"creation_timestamp"`
	ExpirationTimestamp int64           `json:"expiration_timestamp"`
	LimitPrice          decimal.Decimal `json:"limit_price"`
	LimitVolume         decimal.Decimal `json:"limit_volume"`
	Base                decimal.Decimal `json:"base"`
	Counter             decimal.Decimal `json:"counter"`
	FeeBase             decimal.Decimal `json:"fee_base"`
	FeeCounter          decimal.Decimal `json:"fee_counter"`
	Trades              []Trade         `json:"trades"`
}

type Orders struct {
	Orders []Order `json:"orders"`
}

type PostOrderResult struct {
	OrderID string `json:"order_id"`
}

type FundingAddress struct {
	Asset            string          `json:"asset"`
	Address          string          `json:"address"`
	Name             string          `json:"name"`
	AccountID        string          `json:"account_id"`
	AssignedAt       int64           `json:"assigned_at"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	TotalUnconfirmed decimal.Decimal `json:"total_unconfirmed"`
}

type Withdrawal struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Withdrawals struct {
	Withdrawals []Withdrawal `json:"withdrawals"`
}

type Balance struct {
	AccountID   string          `json:"account_id"`
	Asset       string          `json:"asset"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	Reserved    decimal.Decimal `json:"reserved"`
	Unconfirmed decimal.Decimal `json:"unconfirmed"`
}

type Balances struct {
	Balance []Balance `json:"balance"`
}

//
// Transaction is a single row of an account's ledger. Pending transactions carry no row index.
//
type Transaction struct {
	RowIndex       int64           `json:"row_index"`
	Timestamp      int64           `json:"timestamp"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	Balance        decimal.Decimal `json:"balance"`
	Available      decimal.Decimal `json:"available"`
	BalanceDelta   decimal.Decimal `json:"balance_delta"`
	AvailableDelta decimal.Decimal `json:"available_delta"`
}

type Transactions struct {
	ID           string        `json:"id"`
	Transactions []Transaction `json:"transactions"`
}

type PendingTransactions struct {
	ID      string        `json:"id"`
	Pending []Transaction `json:"pending"`
}
