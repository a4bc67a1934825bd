package domain

// STKRequest is the input to a push-payment prompt. PhoneNumber is expected
// to already be in the provider's international format; this layer does not
// reformat it. Amount is ceiling-rounded to a whole unit before submission.
type STKRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
}

// STKResult carries the provider's synchronous acknowledgment verbatim.
// Acknowledged reports whether the provider accepted the push (2xx); the
// actual payment outcome arrives later on the callback URL and is out of
// scope here. Body is the decoded provider JSON, returned to the caller
// as-is; ResponseCode "0" inside it is the provider's success convention
// and is interpreted by the caller, not by us.
type STKResult struct {
	Acknowledged bool
	Body         map[string]any
}
