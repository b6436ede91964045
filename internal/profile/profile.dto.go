package profile

import "cliptAPI/utils"

type AwardXPRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

type TokenRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// ProfileResponse is the profile plus the derived curve position.
type ProfileResponse struct {
	*Profile
	Leveling utils.LevelInfo `json:"leveling"`
}
