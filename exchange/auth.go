package exchange

//
// Auth is an enum that selects whether a call against an exchange's API carries the configured
// credentials or not.
//
type Auth int

const (
	Authenticated Auth = iota
	Unauthenticated
)

func (o Auth) String() string {
	return [...]string{"authenticated", "unauthenticated"}[o]
}
