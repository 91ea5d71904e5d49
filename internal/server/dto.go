package server

import "github.com/ThiagoRGoveia/plan-fact/internal/models"

type CreateFileVersionRequest struct {
	Version  string `json:"version" validate:"required,max=255"`
	FileName string `json:"file_name" validate:"required,max=255"`
}

// CreateValueRequest uses pointers for plan and fact so that an explicit zero
// is accepted while a missing field is not.
type CreateValueRequest struct {
	ProjectID     int    `json:"project_id" validate:"required,gt=0"`
	FileVersionID int    `json:"file_version_id" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Plan          *int64 `json:"plan" validate:"required,min=-2147483648,max=2147483647"`
	Fact          *int64 `json:"fact" validate:"required,min=-2147483648,max=2147483647"`
}

// ChartDataQuery leaves value_type to models.ParseValueType.
type ChartDataQuery struct {
	Version   string `json:"version" validate:"required"`
	Year      int    `json:"year" validate:"min=1,max=9999"`
	ValueType string `json:"value_type"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ChartDataResponse struct {
	Data models.ChartData `json:"data"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
