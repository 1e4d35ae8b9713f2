package metadata

// --- SQLite Keys ---
// These keys are used for the 'key' column in the 'metadata' SQLite table.
const (
	// MentorSeedVersionKey stores the version of the built-in mentor roster
	// that has been written to the mentors table. Used to decide whether the
	// directory needs re-seeding on startup.
	MentorSeedVersionKey = "mentor_seed_version"

	// LastRankingResyncKey stores the unix timestamp of the last successful
	// full resync of the Redis ranking cache from SQLite.
	LastRankingResyncKey = "last_ranking_resync"
)
