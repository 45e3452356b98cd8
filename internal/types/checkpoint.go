package types

// CheckpointRecord is the durable progress of one search.
// A store holds records for a single database, keyed by StartingPassword.
type CheckpointRecord struct {
	DatabasePath     string
	StartingPassword string
	CurrentPassword  string
}
