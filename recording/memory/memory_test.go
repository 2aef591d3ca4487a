package memory

import (
	"testing"

	"github.com/neurorank/fxpagerank/recording/recordingtest"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(InMemoryStoreTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites
	gc.TestingT(t)
}

type InMemoryStoreTestSuite struct {
	recordingtest.SuiteBase
}

func (s *InMemoryStoreTestSuite) SetUpTest(c *gc.C) {
	s.SetStore(NewInMemoryStore())
}
