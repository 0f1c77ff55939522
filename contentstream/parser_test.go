package contentstream

import (
	"testing"

	"github.com/tsawler/reflow/core"
)

func TestParseOperations(t *testing.T) {
	input := []byte("q 1 0 0 1 72 700 cm BT /F1 12 Tf (Hello) Tj [(A) -120 (B)] TJ 0 -14 TD T* (x) ' 1 2 (y) \" ET Q")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []struct {
		op       string
		operands int
	}{
		{"q", 0}, {"cm", 6}, {"BT", 0}, {"Tf", 2}, {"Tj", 1}, {"TJ", 1},
		{"TD", 2}, {"T*", 0}, {"'", 1}, {"\"", 3}, {"ET", 0}, {"Q", 0},
	}
	if len(ops) != len(want) {
		t.Fatalf("got %d operations, want %d: %+v", len(ops), len(want), ops)
	}
	for i, w := range want {
		if ops[i].Operator != w.op || len(ops[i].Operands) != w.operands {
			t.Errorf("op %d = %s/%d, want %s/%d", i, ops[i].Operator, len(ops[i].Operands), w.op, w.operands)
		}
	}

	if name, ok := ops[3].Operands[0].(core.Name); !ok || name != "F1" {
		t.Errorf("Tf font = %v", ops[3].Operands[0])
	}
	arr, ok := ops[5].Operands[0].(core.Array)
	if !ok || len(arr) != 3 || arr[1] != core.Int(-120) {
		t.Errorf("TJ array = %v", ops[5].Operands[0])
	}
}

func TestParseOperandsDoNotLeak(t *testing.T) {
	// operands must not carry over between parsers
	first, _ := NewParser([]byte("1 2")).Parse()
	if len(first) != 0 {
		t.Fatalf("dangling operands produced operations: %v", first)
	}
	ops, err := NewParser([]byte("Q")).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || len(ops[0].Operands) != 0 {
		t.Errorf("ops = %+v", ops)
	}
}

func TestParseRealsAndRefsLookalike(t *testing.T) {
	// "0 0 re" must not be read as an indirect reference
	ops, err := NewParser([]byte("10.5 20 0 0 re S")).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || ops[0].Operator != "re" || len(ops[0].Operands) != 4 {
		t.Fatalf("ops = %+v", ops)
	}
	if ops[0].Operands[0] != core.Real(10.5) {
		t.Errorf("first operand = %v", ops[0].Operands[0])
	}
}

func TestParseInlineImage(t *testing.T) {
	input := []byte("q BI /W 2 /H 1 /BPC 8 /CS /G ID \x00EI\xff EI Q")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("got %d ops: %+v", len(ops), ops)
	}
	bi := ops[1]
	if bi.Operator != "BI" {
		t.Fatalf("op 1 = %s", bi.Operator)
	}
	if string(bi.Inline) != "\x00EI\xff" {
		t.Errorf("inline data = %q", bi.Inline)
	}
	dict := bi.Operands[0].(core.Dict)
	if w, _ := dict.GetInt("W"); w != 2 {
		t.Errorf("W = %v", w)
	}
	if ops[2].Operator != "Q" {
		t.Errorf("op 2 = %s", ops[2].Operator)
	}
}

func TestParseInlineImageWithLength(t *testing.T) {
	input := []byte("BI /W 1 /H 1 /L 3 ID  EI EI Tz")
	ops, err := NewParser(input).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || string(ops[0].Inline) != " EI" || ops[1].Operator != "Tz" {
		t.Errorf("ops = %+v", ops)
	}
}

func TestParseDamagedStream(t *testing.T) {
	ops, err := NewParser([]byte("BT (ok) Tj ET (unterminated")).Parse()
	if err == nil {
		t.Error("expected error for unterminated string")
	}
	if len(ops) != 3 {
		t.Errorf("expected readable prefix of 3 ops, got %d", len(ops))
	}
}
