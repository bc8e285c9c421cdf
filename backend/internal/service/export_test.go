package service

import "github.com/itchan-dev/filesmanager/shared/domain"

// in-memory mocks for tests of package service_test
var (
	NewMockFileStorage  = newMockFileStorage
	NewMockSessionCache = newMockSessionCache
)

func (m *MockJobProducer) Jobs() []domain.ThumbnailJob {
	return m.jobs
}
