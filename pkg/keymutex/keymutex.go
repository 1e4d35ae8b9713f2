// Package keymutex 提供一个按键分片的互斥锁表。
// 针对同一个键的操作会串行化，不同键的操作可以完全并行，
// 避免让无关的聚合体在一把全局锁后排队。
package keymutex

import (
	"hash/fnv"
	"sync"
)

// defaultShards 是默认的分片数量。分片数固定，不随键的数量增长，
// 因此锁表本身不需要任何清理逻辑。
const defaultShards = 64

// KeyMutex 是一个按字符串键分片的互斥锁集合。
type KeyMutex struct {
	shards []sync.Mutex
}

// New 创建一个使用默认分片数的锁表。
func New() *KeyMutex {
	return NewWithShards(defaultShards)
}

// NewWithShards 创建一个指定分片数的锁表。
// shards 必须大于0，否则回退到默认值。
func NewWithShards(shards int) *KeyMutex {
	if shards <= 0 {
		shards = defaultShards
	}
	return &KeyMutex{
		shards: make([]sync.Mutex, shards),
	}
}

// shardFor 通过FNV-1a哈希将键映射到一个分片。
func (km *KeyMutex) shardFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &km.shards[h.Sum32()%uint32(len(km.shards))]
}

// Lock 锁定key所属的分片。
func (km *KeyMutex) Lock(key string) {
	km.shardFor(key).Lock()
}

// Unlock 解锁key所属的分片。
func (km *KeyMutex) Unlock(key string) {
	km.shardFor(key).Unlock()
}
