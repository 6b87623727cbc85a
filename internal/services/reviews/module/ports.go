package module

import dom "critiq/internal/services/reviews/domain"

// Ports holds the ports exposed by the reviews module
type Ports struct {
	Service dom.ServicePort
	Stream  dom.StreamPort
	Worker  dom.WorkerPort
}
