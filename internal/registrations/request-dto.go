package registrations

type RegisterRequest struct {
	NumGuests int    `json:"num_guests" validate:"omitempty,min=1,max=50"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type UpdateStatusRequest struct {
	Status          RegistrationStatus `json:"status" validate:"required"`
	RejectionReason string             `json:"rejection_reason" validate:"max=1000"`
	AdminNote       string             `json:"admin_note" validate:"max=1000"`
}
