package metadata

const (
	// RedisRankingEpochKey 是一个简单的Redis键 (String)，
	// 它存储了排行榜缓存最近一次完整预热时的时间戳。
	// 由adventurer模块在预热成功后写入，用于诊断缓存的新鲜度。
	RedisRankingEpochKey = "meta:ranking_epoch"
)
