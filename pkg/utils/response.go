package utils

// ResponseData is the envelope every REST handler returns.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on error so the recovery middleware can translate it
// into a structured response. Handlers use this instead of manual branching.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
