package sharding

import (
	"strings"
	"testing"
)

func TestGetShardIDIsDeterministic(t *testing.T) {
	a := GetShardID("550e8400-e29b-41d4-a716-446655440001")
	b := GetShardID("550e8400-e29b-41d4-a716-446655440001")
	if a != b {
		t.Fatalf("shard id not deterministic: %d vs %d", a, b)
	}
	if a < 0 || a >= ShardCount {
		t.Fatalf("shard id out of range: %d", a)
	}
}

func TestGetSubjectFormat(t *testing.T) {
	subject := GetSubject("caso", "abc-123")
	if !strings.HasPrefix(subject, "dp.event.") {
		t.Fatalf("unexpected subject prefix: %q", subject)
	}
	if !strings.HasSuffix(subject, ".caso.abc-123") {
		t.Fatalf("unexpected subject suffix: %q", subject)
	}
}
