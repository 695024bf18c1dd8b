package staging

import "todolists/internal/models"

// Reorder builds the new item order after a client reorder event.
//
// Items are first placed in the order their indices appear in order; each
// item is placed at most once and items whose index is absent are dropped.
// The placed items are then folded in sequence: a done item moves to the
// end, and an important item moves to the very front. Importance is applied
// after completion, so an item with both flags ends up first, and several
// important items end up in reverse of their placed order.
func Reorder(items []models.StagedItem, order []int) []models.StagedItem {
	remaining := make([]models.StagedItem, len(items))
	copy(remaining, items)

	placed := make([]models.StagedItem, 0, len(order))
	for _, idx := range order {
		for i, item := range remaining {
			if item.OrderIndex == idx {
				placed = append(placed, item)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}

	result := make([]models.StagedItem, len(placed))
	copy(result, placed)
	for _, item := range placed {
		if item.Done {
			result = moveToEnd(result, item.OrderIndex)
		}
		if item.Important {
			result = moveToFront(result, item.OrderIndex)
		}
	}

	return result
}

func indexOf(items []models.StagedItem, orderIndex int) int {
	for i, item := range items {
		if item.OrderIndex == orderIndex {
			return i
		}
	}
	return -1
}

func moveToEnd(items []models.StagedItem, orderIndex int) []models.StagedItem {
	i := indexOf(items, orderIndex)
	if i < 0 {
		return items
	}
	item := items[i]
	items = append(items[:i], items[i+1:]...)
	return append(items, item)
}

func moveToFront(items []models.StagedItem, orderIndex int) []models.StagedItem {
	i := indexOf(items, orderIndex)
	if i < 0 {
		return items
	}
	item := items[i]
	copy(items[1:i+1], items[:i])
	items[0] = item
	return items
}
