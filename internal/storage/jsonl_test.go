package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tradingtools/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")
	s := NewJsonlStorage(path)

	first := []model.ToolInvocation{
		{Tool: "get_balance", Arguments: json.RawMessage(`{"address":"0xabc"}`), Timestamp: 1700000000},
	}
	second := []model.ToolInvocation{
		{Tool: "swap_tokens", IsError: true, ErrorKind: "invalid_amount", Timestamp: 1700000001},
		{Tool: "get_token_price", DurationMS: 42, Timestamp: 1700000002},
	}

	if err := s.PutInvocations(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.PutInvocations(context.Background(), second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.ToolInvocation
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.ToolInvocation
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		got = append(got, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Tool != "get_balance" || got[1].Tool != "swap_tokens" || got[2].Tool != "get_token_price" {
		t.Fatalf("order mismatch: %+v", got)
	}
	if !got[1].IsError || got[1].ErrorKind != "invalid_amount" {
		t.Fatalf("error fields lost: %+v", got[1])
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s := NewJsonlStorage(path)

	if err := s.PutInvocations(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty batch")
	}
}
