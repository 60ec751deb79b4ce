package bitx

const (
	DefaultHostname = "api.mybitx.com"
	DefaultPort     = 443
	DefaultPair     = "XBTZAR"

	APIPath = "/api/1/"

	NoJSONContent = "no JSON content returned"
)
