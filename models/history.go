package models

import "time"

// StatusChange records one decision of the status gate.
// Rejected attempts are kept too, with Accepted=false and a Reason.
type StatusChange struct {
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	BlockedBy []string  `json:"blockedBy,omitempty"`
	At        time.Time `json:"at"`
}
