package store

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	s, err := New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestWriteThenRead(t *testing.T) {
	s := testStore(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := s.Write("example", payload{Name: "go", Count: 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got payload
	s.Read("example", &got, payload{})
	if got.Name != "go" || got.Count != 3 {
		t.Errorf("Read = %+v, want {go 3}", got)
	}
}

func TestReadMissingKeyFallsBack(t *testing.T) {
	s := testStore(t)

	var got []int
	s.Read("absent", &got, []int{1, 2, 3})
	if len(got) != 3 || got[0] != 1 {
		t.Errorf("Read fallback = %v, want [1 2 3]", got)
	}
}

func TestReadCorruptValueFallsBack(t *testing.T) {
	s := testStore(t)

	// Write garbage directly, bypassing JSON marshaling.
	entry := Entry{Key: "broken", Value: "{not json"}
	if err := s.db.Save(&entry).Error; err != nil {
		t.Fatalf("save raw entry: %v", err)
	}

	var got map[string]string
	s.Read("broken", &got, map[string]string{"state": "default"})
	if got["state"] != "default" {
		t.Errorf("Read corrupt = %v, want fallback map", got)
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := testStore(t)

	if err := s.Write("k", "first"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("k", "second"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := s.ReadString("k", ""); got != "second" {
		t.Errorf("ReadString = %q, want %q", got, "second")
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	if err := s.Write("gone", "x"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := s.ReadString("gone", "fallback"); got != "fallback" {
		t.Errorf("ReadString after delete = %q, want fallback", got)
	}
	// Deleting a missing key is not an error.
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestWriteErrorIsDistinguishable(t *testing.T) {
	s := testStore(t)

	// Channels cannot be marshaled to JSON.
	err := s.Write("bad", make(chan int))
	if err == nil {
		t.Fatal("expected an error for an unmarshalable value")
	}
	var we *WriteError
	if !errors.As(err, &we) {
		t.Errorf("error %v is not a *WriteError", err)
	}
	if we.Key != "bad" {
		t.Errorf("WriteError.Key = %q, want %q", we.Key, "bad")
	}
}
