package txn

import (
	"fmt"

	"github.com/rs/zerolog"
)

func ExampleStore() {
	s := NewStore(WithLogger(zerolog.Nop()))

	err := s.Put("A", 5)
	fmt.Println(err)

	err = s.Begin()
	if err != nil {
		panic("failed to begin: " + err.Error())
	}

	s.Put("A", 5)
	s.Put("A", 6)

	_, found := s.Get("A")
	fmt.Println(found)

	err = s.Commit()
	if err != nil {
		panic("failed to commit: " + err.Error())
	}

	value, found := s.Get("A")
	fmt.Println(value, found)

	// Output: no active transaction
	// false
	// 6 true
}
