package domain

import "github.com/google/uuid"

// Team is the external team entity as the ledger sees it: identity, display
// name, and the total purse available for the whole auction.
type Team struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	TotalPurse Money     `json:"totalPurse"`
}

// TeamBudget is the purse summary for one team: total purse, the amount
// committed to finalized players, and what is left to bid with.
type TeamBudget struct {
	TeamID     uuid.UUID `json:"teamId"`
	Name       string    `json:"name"`
	TotalPurse Money     `json:"totalPurse"`
	Committed  Money     `json:"committed"`
	Remaining  Money     `json:"remaining"`
}
