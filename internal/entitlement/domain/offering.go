package domain

// Package wraps a purchasable product inside an offering.
type Package struct {
	Identifier string
	Product    Product
}

// Offering is a named group of packages presented together, typically a
// paywall's product set.
type Offering struct {
	Identifier string
	Packages   []Package
}
