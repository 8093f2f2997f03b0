package interfaces

// Service is implemented by every transport exposing the wallet service to
// its clients. Stop must release any connection opened since Start.
type Service interface {
	Start() error
	Stop()
}
