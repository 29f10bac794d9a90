package badger_test

import (
	"testing"

	"github.com/xraph/festival/store/badger"
	"github.com/xraph/festival/store/storetest"
)

func TestConformanceInMemory(t *testing.T) {
	s, err := badger.Open("", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	storetest.Run(t, s)
}

func TestConformanceOnDisk(t *testing.T) {
	s, err := badger.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	storetest.Run(t, s)
}
