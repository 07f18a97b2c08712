package sharding

import (
	"fmt"
	"hash/crc32"
)

// ShardCount is the fixed number of event partitions. 256 keeps subject
// cardinality small while still spreading per-record consumers.
const ShardCount = 256

// GetShardID calculates the deterministic shard for a given record ID.
func GetShardID(recordID string) int {
	checksum := crc32.ChecksumIEEE([]byte(recordID))
	return int(checksum % ShardCount)
}

// GetSubject returns the NATS subject for a resource change event.
// Format: dp.event.{shard_id}.{recurso}.{record_id}
func GetSubject(recurso, recordID string) string {
	return fmt.Sprintf("dp.event.%d.%s.%s", GetShardID(recordID), recurso, recordID)
}
