package registry

// Service is a component whose lifecycle the service registry manages.
type Service interface {
	Start() error
	Stop() error
}
