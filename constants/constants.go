package constants

import (
	"time"
)

const (
	Name    = "gobitx"
	Version = "0.1.0"

	UserAgent = Name + " v" + Version

	DefaultWorkers = 5
	DefaultTimeout = 30 * time.Second
)
