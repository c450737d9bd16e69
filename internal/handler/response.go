package handler

type HealthResponse struct {
	Health string `json:"health"`
}

type RecoResponse struct {
	UserID int64   `json:"user_id"`
	Items  []int64 `json:"items"`
}

type ExplainResponse struct {
	P           int    `json:"p"`
	Explanation string `json:"explanation"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

type ErrorDetail struct {
	ErrorKey     string   `json:"error_key"`
	ErrorMessage string   `json:"error_message"`
	ErrorLoc     []string `json:"error_loc"`
}

type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}
