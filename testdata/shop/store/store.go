package store

// Item is a catalog entry.
type Item struct {
	Name  string
	Price int
}

var items = map[int]Item{
	1: {Name: "pen", Price: 2},
}

func findById(itemId int) (Item, bool) {
	it, ok := items[itemId]
	return it, ok
}

// Lookup returns the item with the given id.
func Lookup(id int) (Item, bool) {
	return findById(id)
}
