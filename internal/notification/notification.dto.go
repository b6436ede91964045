package notification

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
	TotalCount    int             `json:"totalCount"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
