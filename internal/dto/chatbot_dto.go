package dto

type AskRequest struct {
	Question  string `json:"question" validate:"required,notblank,max=4000"`
	SessionId string `json:"session_id" validate:"omitempty,max=64"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	SessionId string `json:"session_id"`
}

type PingResponse struct {
	Message string `json:"message"`
}
