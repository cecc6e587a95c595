// Package memory holds the default, process-local login stores.
//
// Both stores split their keyspace over a fixed number of lock shards so that
// requests for different identities rarely contend, while every operation on
// one identity runs inside a single critical section of its shard.
package memory

import "hash/fnv"

const shardCount = 32

func shardIndex(identity string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return int(h.Sum32() % shardCount)
}
