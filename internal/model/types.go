package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunConfig is the persisted parameter surface of one simulation run.
type RunConfig struct {
	VersionedRecord
	RunID        string `json:"run_id"`
	Destination  string `json:"destination,omitempty"`
	CreatedAtUTC string `json:"created_at_utc"`

	SegmentLength int     `json:"segment_length"`
	MutationRate  float64 `json:"mutation_rate"`
	S             float64 `json:"s"`
	Cost          float64 `json:"cost"`
	Capacity      int     `json:"capacity"`
	InitialSize   int     `json:"initial_size"`
	SingleRatio   float64 `json:"single_ratio"`
	Reassortment  float64 `json:"reassortment"`

	Generations int `json:"generations"`
	Replicates  int `json:"replicates"`

	BackMutation    bool   `json:"back_mutation"`
	RecordMode      string `json:"record_mode"`
	PerGeneration   bool   `json:"per_generation"`
	UntilExtinction bool   `json:"until_extinction"`

	Seed uint64 `json:"seed"`
}

// GenerationRecord is one persisted row of a run's record stream. The
// statistics are stored in their formatted record-stream shape.
type GenerationRecord struct {
	VersionedRecord
	Replicate  int    `json:"replicate"`
	Generation int    `json:"generation"`
	Pop1       int    `json:"pop1"`
	Pop2       int    `json:"pop2"`
	Stat1      string `json:"stat1"`
	Stat2      string `json:"stat2"`
}

// RunSummary is the persisted outcome of one run.
type RunSummary struct {
	VersionedRecord
	RunID             string `json:"run_id"`
	ReplicatesRun     int    `json:"replicates_run"`
	RecordCount       int    `json:"record_count"`
	ExtinctReplicates int    `json:"extinct_replicates"`
	FinalPop1         int    `json:"final_pop1"`
	FinalPop2         int    `json:"final_pop2"`
	ElapsedMS         int64  `json:"elapsed_ms"`
}
