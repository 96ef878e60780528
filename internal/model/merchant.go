package model

// Merchant is a row in the merchant catalog.
type Merchant struct {
	Name     string
	Category string
	Aliases  []string // lowercase match keys, besides the name itself
}
