package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	SessionID string     `bson:"session_id" json:"session_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `bson:"product_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Image     string    `bson:"image" json:"image"`
	Price     Price     `bson:"price" json:"price"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Add merges the item into the cart. A product already present gets its
// quantity incremented; the cart never holds two lines for the same
// product id.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	item.AddedAt = time.Now()
	c.Items = append(c.Items, item)
}

// UpdateQuantity applies delta to the matching line. A resulting quantity
// of zero or less removes the line; zero-quantity items are never stored.
// Unknown product ids are a no-op.
func (c *Cart) UpdateQuantity(productID int64, delta int) {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		c.Items[i].Quantity += delta
		if c.Items[i].Quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return
	}
}

// Remove drops the matching line unconditionally. No-op if absent.
func (c *Cart) Remove(productID int64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems is recomputed from the current contents on every call.
func (c *Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice is recomputed from the current contents on every call.
func (c *Cart) TotalPrice() Price {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Price) * int64(item.Quantity)
	}
	return Price(total)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
