// Package catalog holds the fixed pizza menu. The menu is defined at
// process start, optionally from a YAML file, and never persisted.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item is one menu entry. Price is in minor currency units.
type Item struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       int64  `json:"price" yaml:"price"`
	Description string `json:"description" yaml:"description"`
}

type Catalog struct {
	items []Item
	byID  map[int]Item
}

// Default returns the built-in menu.
func Default() *Catalog {
	c, err := build([]Item{
		{ID: 0, Name: "Americano", Price: 10, Description: "After an all-American feast? Mix it up with meat, veg and spice tonight."},
		{ID: 1, Name: "3 Cheese", Price: 8, Description: "Like your cheese with a side of cheese? With extra cheese on that?"},
		{ID: 2, Name: "Pepperoni", Price: 12, Description: "Spicy, smokey slices of deliciousness and melty cheese make for the best of friends, right?"},
		{ID: 3, Name: "Texas BBQ", Price: 15, Description: "If y'all want a taste of the deep south, Texas BBQ is where it's at."},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a menu from a YAML file:
//
//	menu:
//	  - id: 0
//	    name: Americano
//	    price: 10
//	    description: ...
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}

	var file struct {
		Menu []Item `yaml:"menu"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}

	if len(file.Menu) == 0 {
		return nil, fmt.Errorf("menu file %s defines no items", path)
	}

	return build(file.Menu)
}

func build(items []Item) (*Catalog, error) {
	byID := make(map[int]Item, len(items))
	for _, it := range items {
		if it.Name == "" || it.Price <= 0 {
			return nil, fmt.Errorf("menu item %d: name and positive price required", it.ID)
		}
		if _, ok := byID[it.ID]; ok {
			return nil, fmt.Errorf("menu item id %d defined twice", it.ID)
		}
		byID[it.ID] = it
	}

	return &Catalog{items: items, byID: byID}, nil
}

// List returns the full menu in definition order.
func (c *Catalog) List() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(id int) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Missing returns the distinct ids from the input that are not on the menu.
func (c *Catalog) Missing(ids []int) []int {
	seen := map[int]struct{}{}
	var missing []int
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := c.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
