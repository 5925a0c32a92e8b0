package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/treasurehunt-go/internal/storage"
	"github.com/mcoot/treasurehunt-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &StorageSuite{
		Suite: storagetest.Suite{
			NewStorage: func(t *testing.T) storage.Storage { return New() },
		},
	})
}

func (s *StorageSuite) TestGetReturnsCopy() {
	account := s.NewAccount("acc-1", "alice")
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, account))

	retrieved, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	retrieved.Progress.CurrentLevel = 7
	account.Progress.CurrentLevel = 9

	again, _ := s.Store.GetAccount(s.Ctx, "acc-1")
	s.Equal(1, again.Progress.CurrentLevel)
}
