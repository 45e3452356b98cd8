package checkpoint

// Request represents a checkpoint listing request
type Request struct {
	StorePath string

	// StartingPassword selects a single search when set
	StartingPassword string
}

// Response lists the searches recorded in a store
type Response struct {
	StorePath    string   `json:"store_path" yaml:"store_path"`
	DatabasePath string   `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	Records      []Record `json:"records" yaml:"records"`
}

// Record is the progress of one search
type Record struct {
	StartingPassword string  `json:"starting_password" yaml:"starting_password"`
	CurrentPassword  string  `json:"current_password" yaml:"current_password"`
	Exhausted        bool    `json:"exhausted" yaml:"exhausted"`
	Percent          float64 `json:"percent" yaml:"percent"`
}
