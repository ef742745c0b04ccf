package game

import (
	"errors"
	"testing"

	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

func TestTableManager(t *testing.T) {
	tm := NewTableManager(2)
	defer tm.Close()

	if _, err := tm.CreateTable(-1); !errors.Is(err, mahjong.ErrInvalidSeat) {
		t.Fatalf("CreateTable(-1) = %v, want ErrInvalidSeat", err)
	}
	first, err := tm.CreateTable(0)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	second, err := tm.CreateTable(3)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("duplicate table id %s", first.ID)
	}
	if _, err := tm.CreateTable(1); !errors.Is(err, ErrTooManyTables) {
		t.Fatalf("third table = %v, want ErrTooManyTables", err)
	}

	if got, ok := tm.GetTable(second.ID); !ok || got != second {
		t.Fatalf("GetTable did not return the created table")
	}
	list := tm.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d tables", len(list))
	}
	tables, active := tm.Stats()
	if tables != 2 || active != 2 {
		t.Fatalf("Stats() = %d, %d, want 2, 2", tables, active)
	}

	if err := tm.DeleteTable(first.ID); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if err := tm.DeleteTable(first.ID); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("second DeleteTable = %v, want ErrTableNotFound", err)
	}
	if _, ok := tm.GetTable(first.ID); ok {
		t.Fatalf("deleted table still registered")
	}
	if first.Stage() != mahjong.StagePreReveal {
		t.Fatalf("stage = %s", first.Stage())
	}

	tm.Close()
	tm.Close()
	if _, err := tm.CreateTable(0); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("CreateTable after Close = %v, want ErrManagerClosed", err)
	}
	if tables, _ := tm.Stats(); tables != 0 {
		t.Fatalf("tables left after Close: %d", tables)
	}
}
