package redis

import (
	"fmt"

	"github.com/mcoot/treasurehunt-go/internal/model"
)

// Key prefix for all hunt data
const keyPrefix = "hunt"

// accountKey returns the Redis key for an Account
func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> account_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// accountsIndexKey returns the Redis key for the SET of all account keys
func accountsIndexKey() string {
	return fmt.Sprintf("%s:idx:accounts", keyPrefix)
}
