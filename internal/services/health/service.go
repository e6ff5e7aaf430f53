package health

// Service answers liveness checks for the filings API.
type Service struct{}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{}
}

// Status returns the liveness payload served at /health. It reports
// process liveness only; registry reachability surfaces per request.
func (s *Service) Status() map[string]any {
	return map[string]any{"ok": true, "service": "filings-api"}
}
