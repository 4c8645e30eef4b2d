package response

// Response is the common JSON envelope for API replies.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK returns a success envelope.
func OK() Response {
	return Response{Status: StatusOK}
}

// Ok returns a success envelope carrying a payload.
func Ok(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error returns an error envelope with the given message.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}
