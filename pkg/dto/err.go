package dto

import "time"

type ErrorResponse struct {
	Detail string    `json:"detail"`
	Time   time.Time `json:"time"`
}

func NewErr(detail string) ErrorResponse {
	return ErrorResponse{
		Detail: detail,
		Time:   time.Now().UTC(),
	}
}
