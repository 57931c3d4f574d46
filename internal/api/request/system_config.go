package request

type SetSystemConfig struct {
	Key         string `json:"key" validate:"required,max=255"`
	Value       string `json:"value" validate:"required"`
	Description string `json:"description" validate:"max=500"`
}
