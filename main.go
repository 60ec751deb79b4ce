package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/gobitx/config"
	"github.com/lukehollenback/gobitx/exchange"
	"github.com/lukehollenback/gobitx/exchange/bitx"
	"go.uber.org/zap"
)

var (
	cfgPath   = flag.String("config", "", "Path to an optional YAML file of client settings.")
	cfgDepth  = flag.Int("depth", 5, "The number of order book entries to show on each side.")
	cfgTrades = flag.Int("trades", 10, "The number of recent trades to show.")
	cfgAsset  = flag.String("asset", "XBT", "The asset whose funding address is shown.")
)

func main() {
	flag.Parse()

	//
	// Load configuration and build a logger.
	//
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration. (Error: %s)\n", err)
		os.Exit(1)
	}

	logger := zap.NewNop()

	if cfg.Debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build logger. (Error: %s)\n", err)
			os.Exit(1)
		}
	}

	defer logger.Sync()

	if !cfg.HasCredentials() {
		fmt.Printf(
			"%s I couldn't find %s and %s. None of the queries that require authentication will work, "+
				"so I'll only run the public ones.\n",
			aurora.Bold(aurora.Yellow("Note:")), config.EnvKey, config.EnvSecret,
		)
	}

	//
	// Build the client.
	//
	client, err := bitx.New(cfg.Key, cfg.Secret, cfg.Options(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build the BitX client. (Error: %s)\n", err)
		os.Exit(1)
	}

	//
	// Register a kill signal handler with the operating system so that we can stop early but still
	// let in-flight requests finish.
	//
	osInterrupt := make(chan os.Signal, 1)

	signal.Notify(osInterrupt, os.Interrupt)

	chDone := make(chan bool, 1)

	go func() {
		runDemo(client)

		chDone <- true
	}()

	select {
	case <-chDone:
	case <-osInterrupt:
		fmt.Println("An operating system interrupt has been received. Shutting down...")
	}

	//
	// Wrap everything up.
	//
	if err := client.Close(); err != nil {
		logger.Error("Failed to close the BitX client.", zap.Error(err))
	}

	fmt.Println("Goodbye.")
}

//
// runDemo makes every public call and, if the client has credentials, the private read-only ones.
//
func runDemo(client *bitx.Client) {
	auth := client.DefaultAuth()

	show("Ticker", func() (*exchange.Response, error) { return client.GetTicker(auth) })
	show("All Tickers", func() (*exchange.Response, error) { return client.GetAllTickers(auth) })
	show("Order Book", func() (*exchange.Response, error) { return client.GetOrderBook(*cfgDepth, auth) })
	show("Trades", func() (*exchange.Response, error) { return client.GetTrades(*cfgTrades, auth) })

	if auth != exchange.Authenticated {
		return
	}

	show("Orders", func() (*exchange.Response, error) { return client.GetOrders(exchange.AnyState, auth) })
	show("Funding Address", func() (*exchange.Response, error) { return client.GetFundingAddress(*cfgAsset, auth) })
	show("Balance", func() (*exchange.Response, error) { return client.GetBalance(auth) })
}

//
// show makes a single call and pretty-prints its result or its error under a banner.
//
func show(name string, call func() (*exchange.Response, error)) {
	rule := strings.Repeat("-", 80)

	fmt.Println(rule)
	fmt.Printf("%45s\n", aurora.Bold(aurora.Blue(name)))
	fmt.Println(rule)

	resp, err := call()
	if err != nil {
		fmt.Println(aurora.Red(err.Error()))

		return
	}

	pretty, err := json.MarshalIndent(resp.Payload(), "", "    ")
	if err != nil {
		fmt.Println(aurora.Red(err.Error()))

		return
	}

	fmt.Println(string(pretty))
}
