package exchange

import (
	"github.com/shopspring/decimal"
)

//
// Client generically provides an interface to an object that can be used to interact with a
// cryptocurrency exchange's regular REST API. Normally, this is the client used to do things
// like place orders, check balances, and retrieve market data.
//
// Whenever an endpoint fails – whether due to a system failure, a timeout, an HTTP error, or an
// API error – the error component of the response will be non-nil and the response will be nil.
// Every call takes an explicit Auth mode. Calls that need an account will be rejected by the
// exchange when made Unauthenticated.
//
type Client interface {

	//
	// GetTicker retrieves the ticker of the client's configured trading pair.
	//
	GetTicker(auth Auth) (*Response, error)

	//
	// GetAllTickers retrieves the tickers of every trading pair the exchange offers.
	//
	GetAllTickers(auth Auth) (*Response, error)

	//
	// GetOrderBook retrieves the order book of the configured trading pair. When depth is positive,
	// both sides of the book are cut down to that many entries.
	//
	GetOrderBook(depth int, auth Auth) (*Response, error)

	//
	// GetTrades retrieves recent trades of the configured trading pair. When limit is positive, the
	// list is cut down to that many trades.
	//
	GetTrades(limit int, auth Auth) (*Response, error)

	//
	// GetOrders lists the account's most recent orders in the configured trading pair.
	//
	GetOrders(state OrderState, auth Auth) (*Response, error)

	GetOrder(orderID string, auth Auth) (*Response, error)

	GetFundingAddress(asset string, auth Auth) (*Response, error)

	//
	// GetWithdrawalsStatus retrieves a single withdrawal when id is non-empty, or every withdrawal
	// otherwise.
	//
	GetWithdrawalsStatus(id string, auth Auth) (*Response, error)

	GetBalance(auth Auth) (*Response, error)

	//
	// GetTransactions retrieves an account's transactions. Row bounds that are zero are not sent.
	//
	GetTransactions(accountID string, minRow int, maxRow int, auth Auth) (*Response, error)

	GetPendingTransactions(accountID string, auth Auth) (*Response, error)

	//
	// CreateLimitOrder places a limit order in the configured trading pair.
	//
	CreateLimitOrder(orderType OrderType, volume decimal.Decimal, price decimal.Decimal, auth Auth) (*Response, error)

	//
	// Close releases any resources held by the client. Calls made afterwards fail.
	//
	Close() error
}
