package dto

type CreateNotificationRequest struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
	Title     string `json:"title" validate:"required,max=200"`
	Message   string `json:"message" validate:"required"`
	Kind      string `json:"type" validate:"omitempty,oneof=info success warning error"`
}

type NotificationListResponse struct {
	Success       bool        `json:"success"`
	Count         int         `json:"count"`
	Notifications interface{} `json:"data"`
}
