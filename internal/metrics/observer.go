package metrics

// Observer records backend business events.
type Observer interface {
	RecordLogin(result string)
	RecordRefresh(result string)
	RecordCaptcha(purpose string)
	RecordBooking(result string)
}

const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)
