package dto

import "github.com/yukikurage/release-planner/internal/models"

// AccountDTO represents an account in API responses
type AccountDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ToAccountDTO converts an Account model to AccountDTO
func ToAccountDTO(account models.Account) AccountDTO {
	return AccountDTO{
		ID:       account.ID,
		Username: account.Username,
	}
}
