package finance

import "finanzas/internal/models"

// State is one user's collections at a point in time.
type State struct {
	Transactions []models.Transaction
	Categories   []models.Category
	Budgets      []models.Budget
}

// Command is a change to a State. Commands are applied with Apply.
type Command interface {
	apply(s *State) (touchesBudgets bool)
}

type (
	SetTransactions   struct{ Transactions []models.Transaction }
	AddTransaction    struct{ Transaction models.Transaction }
	UpdateTransaction struct{ Transaction models.Transaction }
	DeleteTransaction struct{ ID string }
	// MergeTransactions overwrites transactions with a matching ID and
	// appends the rest, preserving the order of the existing list.
	MergeTransactions struct{ Transactions []models.Transaction }

	SetCategories  struct{ Categories []models.Category }
	AddCategory    struct{ Category models.Category }
	UpdateCategory struct{ Category models.Category }
	DeleteCategory struct{ ID string }

	SetBudgets   struct{ Budgets []models.Budget }
	AddBudget    struct{ Budget models.Budget }
	UpdateBudget struct{ Budget models.Budget }
	DeleteBudget struct{ ID string }
)

// Apply returns the state after cmd, leaving s untouched. When cmd changes
// transactions or budgets, budget spending is recomputed and the IDs of the
// budgets whose Spent changed are returned.
func Apply(s State, cmd Command) (State, []string) {
	next := State{
		Transactions: append([]models.Transaction(nil), s.Transactions...),
		Categories:   append([]models.Category(nil), s.Categories...),
		Budgets:      append([]models.Budget(nil), s.Budgets...),
	}
	if cmd == nil || !cmd.apply(&next) {
		return next, nil
	}

	res := RecomputeBudgetSpent(next.Transactions, next.Budgets)
	next.Budgets = res.Budgets
	return next, res.Changed
}

func (c SetTransactions) apply(s *State) bool {
	s.Transactions = append([]models.Transaction(nil), c.Transactions...)
	return true
}

func (c AddTransaction) apply(s *State) bool {
	s.Transactions = append(s.Transactions, c.Transaction)
	return true
}

func (c UpdateTransaction) apply(s *State) bool {
	for i := range s.Transactions {
		if s.Transactions[i].ID == c.Transaction.ID {
			s.Transactions[i] = c.Transaction
			return true
		}
	}
	return false
}

func (c DeleteTransaction) apply(s *State) bool {
	for i := range s.Transactions {
		if s.Transactions[i].ID == c.ID {
			s.Transactions = append(s.Transactions[:i], s.Transactions[i+1:]...)
			return true
		}
	}
	return false
}

func (c MergeTransactions) apply(s *State) bool {
	s.Transactions = Merge(s.Transactions, c.Transactions)
	return len(c.Transactions) > 0
}

func (c SetCategories) apply(s *State) bool {
	s.Categories = append([]models.Category(nil), c.Categories...)
	return false
}

func (c AddCategory) apply(s *State) bool {
	s.Categories = append(s.Categories, c.Category)
	return false
}

func (c UpdateCategory) apply(s *State) bool {
	for i := range s.Categories {
		if s.Categories[i].ID == c.Category.ID {
			s.Categories[i] = c.Category
			break
		}
	}
	return false
}

func (c DeleteCategory) apply(s *State) bool {
	for i := range s.Categories {
		if s.Categories[i].ID == c.ID {
			s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
			break
		}
	}
	return false
}

func (c SetBudgets) apply(s *State) bool {
	s.Budgets = append([]models.Budget(nil), c.Budgets...)
	return true
}

func (c AddBudget) apply(s *State) bool {
	s.Budgets = append(s.Budgets, c.Budget)
	return true
}

func (c UpdateBudget) apply(s *State) bool {
	for i := range s.Budgets {
		if s.Budgets[i].ID == c.Budget.ID {
			s.Budgets[i] = c.Budget
			return true
		}
	}
	return false
}

func (c DeleteBudget) apply(s *State) bool {
	for i := range s.Budgets {
		if s.Budgets[i].ID == c.ID {
			s.Budgets = append(s.Budgets[:i], s.Budgets[i+1:]...)
			return true
		}
	}
	return false
}

// Merge overwrites entries of existing whose ID appears in incoming and
// appends the remaining incoming entries in order. Later duplicates in
// incoming win.
func Merge(existing, incoming []models.Transaction) []models.Transaction {
	out := append([]models.Transaction(nil), existing...)
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range incoming {
		if i, ok := index[t.ID]; ok && t.ID != "" {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
