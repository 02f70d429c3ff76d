package products

import "wanderly/internal/shared/utils/response"

type ProductListResponse struct {
	Products   []Product           `json:"products"`
	Pagination response.Pagination `json:"pagination"`
}
