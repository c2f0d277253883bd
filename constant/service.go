package constant

const (
	ServiceName    = "confession_service"
	ServiceVersion = "1.0.0"
)
