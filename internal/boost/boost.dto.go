package boost

import "github.com/google/uuid"

type ApplyBoostRequest struct {
	ContentID   uuid.UUID   `json:"contentId"`
	ContentType ContentType `json:"contentType"`
	BoostType   Type        `json:"boostType"`
}

type BoostResponse struct {
	*Boost
	Metrics *Metrics `json:"metrics,omitempty"`
}
