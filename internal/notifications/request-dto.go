package notifications

// ListQuery pages an inbox newest first
type ListQuery struct {
	Limit  int64 `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int64 `form:"offset" validate:"omitempty,min=0"`
}
