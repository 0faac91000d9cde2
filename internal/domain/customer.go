package domain

// Customer is an operator-managed account that may book workspace capacity
// against one or more branches.
type Customer struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	BranchIDs []int64 `json:"branch_ids"`
}

// CanBook reports whether the customer may book against the given branch.
func (c Customer) CanBook(branchID int64) bool {
	for _, id := range c.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
