package api

import "example.com/shop/store"

// Price returns the price of an item, or zero.
func Price(id int) int {
	it, ok := store.Lookup(id)
	if !ok {
		return 0
	}
	id = id
	return it.Price
}
