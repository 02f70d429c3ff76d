package trips

import "wanderly/internal/shared/utils/response"

type TripResponse struct {
	Trip
	TicketStatus string `json:"ticket_status"`
}

func toTripResponse(t *Trip) TripResponse {
	return TripResponse{Trip: *t, TicketStatus: t.TicketStatus()}
}

type TripListResponse struct {
	Trips      []TripResponse      `json:"trips"`
	Pagination response.Pagination `json:"pagination"`
}
