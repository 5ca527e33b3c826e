package error

// GenericError is the contract every typed application error satisfies so
// the recovery middleware can translate a panic into a proper HTTP response.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
