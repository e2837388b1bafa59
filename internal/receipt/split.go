package receipt

// CalculateSplit computes each person's owed total from an assigned item
// list. A shared item's price is divided evenly among its assignees;
// unassigned items count toward nobody. Every person appears in the result
// in input order, including people who owe nothing.
func CalculateSplit(items []Item, people []Person) []SplitResult {
	results := make([]SplitResult, len(people))
	index := make(map[string]*SplitResult, len(people))
	for i, p := range people {
		results[i] = SplitResult{
			PersonID:   p.ID,
			PersonName: p.Name,
			Items:      []SplitItem{},
		}
		index[p.ID] = &results[i]
	}

	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}
		splitPrice := item.Price / float64(len(item.AssignedTo))
		for _, personID := range item.AssignedTo {
			result, ok := index[personID]
			if !ok {
				// Assignee not in the people list; their share is unclaimed
				continue
			}
			result.Total += splitPrice
			result.Items = append(result.Items, SplitItem{
				ItemName:   item.Name,
				ItemPrice:  item.Price,
				SplitPrice: splitPrice,
			})
		}
	}

	return results
}
