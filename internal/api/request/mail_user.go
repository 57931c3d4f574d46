package request

type CreateMailUser struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,min=8"`
	QuotaBytes int64  `json:"quota_bytes" validate:"gte=0"`
}

type UpdateMailUserQuota struct {
	QuotaBytes int64 `json:"quota_bytes" validate:"gte=0"`
}
