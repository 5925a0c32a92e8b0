package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/treasurehunt-go/internal/storage"
	"github.com/mcoot/treasurehunt-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := &StorageSuite{}
	s.NewStorage = func(t *testing.T) storage.Storage {
		s.mini = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, DefaultConfig())
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TestAccountStoredUnderPrefixedKeys() {
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, s.NewAccount("acc-1", "alice")))

	s.True(s.mini.Exists("hunt:account:acc-1"))

	id, err := s.mini.Get("hunt:idx:username:alice")
	s.Require().NoError(err)
	s.Equal("acc-1", id)

	members, err := s.mini.Members("hunt:idx:accounts")
	s.Require().NoError(err)
	s.Equal([]string{"hunt:account:acc-1"}, members)
}

func (s *StorageSuite) TestDeleteRemovesIndexes() {
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, s.NewAccount("acc-1", "alice")))
	s.Require().NoError(s.Store.DeleteAccount(s.Ctx, "acc-1"))

	s.False(s.mini.Exists("hunt:account:acc-1"))
	s.False(s.mini.Exists("hunt:idx:username:alice"))

	accounts, err := s.Store.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *StorageSuite) TestListSkipsDanglingIndexEntries() {
	s.Require().NoError(s.Store.CreateAccount(s.Ctx, s.NewAccount("acc-1", "alice")))
	_, err := s.mini.SetAdd("hunt:idx:accounts", "hunt:account:ghost")
	s.Require().NoError(err)

	accounts, err := s.Store.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Len(accounts, 1)
}

func (s *StorageSuite) TestCorruptAccountReturnsError() {
	s.Require().NoError(s.mini.Set("hunt:account:bad", "{not json"))

	_, err := s.Store.GetAccount(s.Ctx, "bad")
	s.Error(err)
}
