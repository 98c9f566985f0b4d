package model

// ErrorResponse is the JSON body of every error the gateway produces itself.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *ErrorResponse) Error() string { return e.Message }

// BatchResult is the outcome of one batch sync run.
type BatchResult struct {
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Errors  []ItemError `json:"errors"`
}

// ItemError records a single failed batch item. GradeID is nil when the item
// carried no grade id at all.
type ItemError struct {
	GradeID *string `json:"grade_id"`
	Status  int     `json:"status"`
	Message string  `json:"message,omitempty"`
}
