package services

import "gnsons/internal/models"

// TransitionTable lists, for each current status, the statuses an admin may
// move an order to. Tightening the lifecycle is a change to this data only.
type TransitionTable map[models.OrderStatus][]models.OrderStatus

// PermissiveTransitions allows every status to move to every status,
// including itself and backwards.
func PermissiveTransitions() TransitionTable {
	table := make(TransitionTable, len(models.OrderStatuses))
	for _, from := range models.OrderStatuses {
		table[from] = append([]models.OrderStatus(nil), models.OrderStatuses...)
	}
	return table
}

// Allows reports whether an order at from may be set to to.
func (t TransitionTable) Allows(from, to models.OrderStatus) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}
