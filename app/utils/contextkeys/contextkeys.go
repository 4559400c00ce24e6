package contextkeys

type RequestId struct{}

func (RequestId) String() string { return "request_id" }
