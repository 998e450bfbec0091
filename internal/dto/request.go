package dto

type CreateBookingRequest struct {
	BusinessID     string `json:"business_id" validate:"required,uuid"`
	BookableItemID string `json:"bookable_item_id" validate:"required,uuid"`
	StartDatetime  string `json:"start_datetime" validate:"required"`
	EndDatetime    string `json:"end_datetime" validate:"required"`
	UnitCount      *int   `json:"unit_count" validate:"omitempty,min=1"`
}

type CancelBookingRequest struct {
	BookingID string `json:"booking_id" uri:"id" validate:"required"`
	Reason    string `json:"reason" form:"reason" validate:"max=1000"`
}

type AvailableSlotsQuery struct {
	BookableItemID string `json:"bookable_item_id" uri:"id" validate:"required"`
	StartDate      string `json:"start_date" form:"start_date" validate:"required,isodate"`
	EndDate        string `json:"end_date" form:"end_date" validate:"required,isodate"`
}

type ListBookingsQuery struct {
	BusinessID     string `json:"business_id" form:"business_id" validate:"omitempty,uuid"`
	BookableItemID string `json:"bookable_item_id" form:"bookable_item_id" validate:"omitempty,uuid"`
	Status         string `json:"status" form:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	StartDate      string `json:"start_date" form:"start_date" validate:"omitempty,isodate"`
	EndDate        string `json:"end_date" form:"end_date" validate:"omitempty,isodate"`
	Page           int    `json:"page" form:"page" validate:"omitempty,min=1"`
	PageSize       int    `json:"page_size" form:"page_size" validate:"omitempty,min=1,max=200"`
}

type CreateBusinessHoursRequest struct {
	StaffID   string `json:"staff_id" validate:"omitempty,uuid"`
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

type StatisticsQuery struct {
	BusinessID string `json:"business_id" uri:"id" validate:"required"`
	StartDate  string `json:"start_date" form:"start_date" validate:"required,isodate"`
	EndDate    string `json:"end_date" form:"end_date" validate:"required,isodate"`
}
