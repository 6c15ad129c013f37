package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/peterldowns/testy/check"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'users.email'"}
	check.True(t, isDuplicateKey(dup))
	check.True(t, isDuplicateKey(fmt.Errorf("insert user: %w", dup)))

	check.False(t, isDuplicateKey(nil))
	check.False(t, isDuplicateKey(errors.New("duplicate entry")))
	check.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
}
