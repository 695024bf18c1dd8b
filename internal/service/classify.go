package service

import "todolists/internal/models"

// ListGroups splits a user's lists for the overview page
type ListGroups struct {
	Ongoing  []models.ListWithItems
	Finished []models.ListWithItems
}

// ClassifyLists puts lists whose items are all done, including empty lists,
// in Finished and the rest in Ongoing. Input order is kept within each group.
func ClassifyLists(lists []models.ListWithItems) ListGroups {
	groups := ListGroups{
		Ongoing:  []models.ListWithItems{},
		Finished: []models.ListWithItems{},
	}
	for _, list := range lists {
		if list.IsFinished() {
			groups.Finished = append(groups.Finished, list)
		} else {
			groups.Ongoing = append(groups.Ongoing, list)
		}
	}
	return groups
}
