package bitx

import (
	"net/url"
	"strconv"

	"github.com/lukehollenback/gobitx/exchange"
	"github.com/shopspring/decimal"
)

func (o *Client) GetTicker(auth exchange.Auth) (*exchange.Response, error) {
	return o.Get("ticker", o.pairParams(), auth)
}

func (o *Client) GetAllTickers(auth exchange.Auth) (*exchange.Response, error) {
	return o.Get("tickers", nil, auth)
}

//
// GetOrderBook retrieves the order book of the client's trading pair. The API always returns the
// full book, so a positive depth is applied here by keeping only the best depth bids and asks.
//
func (o *Client) GetOrderBook(depth int, auth exchange.Auth) (*exchange.Response, error) {
	resp, err := o.Get("orderbook", o.pairParams(), auth)
	if err != nil {
		return nil, err
	}

	truncate(resp, depth, "bids", "asks")

	return resp, nil
}

//
// GetTrades retrieves the most recent trades of the client's trading pair, keeping only the first
// limit of them when limit is positive.
//
func (o *Client) GetTrades(limit int, auth exchange.Auth) (*exchange.Response, error) {
	resp, err := o.Get("trades", o.pairParams(), auth)
	if err != nil {
		return nil, err
	}

	truncate(resp, limit, "trades")

	return resp, nil
}

//
// GetOrders returns the most recently placed orders in the client's trading pair, optionally
// restricted to COMPLETE or PENDING ones. The exchange truncates the list after 100 items.
//
func (o *Client) GetOrders(state exchange.OrderState, auth exchange.Auth) (*exchange.Response, error) {
	params := o.pairParams()

	if state != exchange.AnyState {
		params.Set("state", state.String())
	}

	return o.Get("listorders", params, auth)
}

func (o *Client) GetOrder(orderID string, auth exchange.Auth) (*exchange.Response, error) {
	return o.Get("orders/"+orderID, nil, auth)
}

func (o *Client) GetFundingAddress(asset string, auth exchange.Auth) (*exchange.Response, error) {
	params := url.Values{}
	params.Set("asset", asset)

	return o.Get("funding_address", params, auth)
}

func (o *Client) GetWithdrawalsStatus(id string, auth exchange.Auth) (*exchange.Response, error) {
	call := "withdrawals"

	if id != "" {
		call += "/" + id
	}

	return o.Get(call, nil, auth)
}

func (o *Client) GetBalance(auth exchange.Auth) (*exchange.Response, error) {
	return o.Get("balance", nil, auth)
}

func (o *Client) GetTransactions(
	accountID string,
	minRow int,
	maxRow int,
	auth exchange.Auth,
) (*exchange.Response, error) {
	params := url.Values{}

	if minRow > 0 {
		params.Set("min_row", strconv.Itoa(minRow))
	}

	if maxRow > 0 {
		params.Set("max_row", strconv.Itoa(maxRow))
	}

	return o.Get("accounts/"+accountID+"/transactions", params, auth)
}

func (o *Client) GetPendingTransactions(accountID string, auth exchange.Auth) (*exchange.Response, error) {
	return o.Get("accounts/"+accountID+"/pending", nil, auth)
}

//
// CreateLimitOrder places a limit order for the provided volume at the provided price in the
// client's trading pair. The response holds the new order's "order_id".
//
func (o *Client) CreateLimitOrder(
	orderType exchange.OrderType,
	volume decimal.Decimal,
	price decimal.Decimal,
	auth exchange.Auth,
) (*exchange.Response, error) {
	form := url.Values{}
	form.Set("pair", o.pair)
	form.Set("type", orderType.String())
	form.Set("volume", volume.String())
	form.Set("price", price.String())

	return o.Post("postorder", form, auth)
}

func (o *Client) pairParams() url.Values {
	params := url.Values{}
	params.Set("pair", o.pair)

	return params
}

//
// truncate cuts each of the named lists in the response's payload down to n entries. It does
// nothing when n is not positive or the payload is not an object.
//
func truncate(resp *exchange.Response, n int, keys ...string) {
	if n <= 0 {
		return
	}

	m := resp.Map()
	if m == nil {
		return
	}

	for _, k := range keys {
		if list, ok := m[k].([]interface{}); ok && len(list) > n {
			m[k] = list[:n]
		}
	}
}
