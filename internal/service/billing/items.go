// internal/service/billing/items.go
package billing

import (
	"salora-service/internal/domain/order"
	xerrors "salora-service/internal/pkg/errors"
)

// Line-item transforms never mutate their input; callers get a fresh slice
// and can recompute totals on every keystroke.

// AddItem appends a line item and returns the new list.
func AddItem(items []order.OrderLineItem, item order.OrderLineItem) []order.OrderLineItem {
	out := make([]order.OrderLineItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// RemoveItem drops the line item with the given ID, if present.
func RemoveItem(items []order.OrderLineItem, itemID int64) []order.OrderLineItem {
	out := make([]order.OrderLineItem, 0, len(items))
	for _, it := range items {
		if it.ID != itemID {
			out = append(out, it)
		}
	}
	return out
}

// SetQuantity changes a line item's quantity. A quantity of zero or below
// removes the item. Raising a product above its stock ceiling fails with
// ErrInsufficientStock and leaves the list unchanged.
func SetQuantity(items []order.OrderLineItem, itemID int64, quantity int) ([]order.OrderLineItem, error) {
	if quantity <= 0 {
		return RemoveItem(items, itemID), nil
	}

	out := make([]order.OrderLineItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].ID != itemID {
			continue
		}
		if out[i].Kind == order.ItemKindProduct && out[i].StockCeiling > 0 && quantity > out[i].StockCeiling {
			return items, xerrors.ErrInsufficientStock
		}
		out[i].Quantity = quantity
		return out, nil
	}

	return items, xerrors.ErrNotFound
}
