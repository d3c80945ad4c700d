package model

import "fmt"

// UserCollection is advertised by the schema endpoint but has no write path.
const UserCollection = "user"

// NativeIDKey is the key under which stores return their own identifier.
const NativeIDKey = "_id"

// Collections lists every collection name known to the API, in display order.
func Collections() []string {
	return []string{UserCollection, ProductCollection, OrderCollection}
}

// Document is a stored record as returned by a document store.
type Document map[string]any

// WithPublicID replaces the native identifier with its string form under "id".
// Documents without a native identifier are returned unchanged.
func (d Document) WithPublicID() Document {
	native, ok := d[NativeIDKey]
	if !ok {
		return d
	}
	delete(d, NativeIDKey)
	d["id"] = IDString(native)
	return d
}

type hexer interface {
	Hex() string
}

// IDString renders a store identifier as an opaque string.
func IDString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case hexer:
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// CreatedEvent is published after a document has been inserted.
type CreatedEvent struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Record     any    `json:"record"`
}
