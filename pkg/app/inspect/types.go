package inspect

// Request represents a database inspection request
type Request struct {
	DatabasePath     string
	StrictHeaders    bool
	KeyFileExtension string
}

// Response describes the unencrypted parts of a database
type Response struct {
	Path              string      `json:"path" yaml:"path"`
	Magic             string      `json:"magic" yaml:"magic"`
	Identifier        string      `json:"identifier" yaml:"identifier"`
	Version           string      `json:"version" yaml:"version"`
	Cipher            string      `json:"cipher" yaml:"cipher"`
	CipherID          string      `json:"cipher_id" yaml:"cipher_id"`
	Compression       string      `json:"compression" yaml:"compression"`
	TransformRounds   uint64      `json:"transform_rounds" yaml:"transform_rounds"`
	InnerRandomStream string      `json:"inner_random_stream" yaml:"inner_random_stream"`
	Entries           []EntryInfo `json:"entries" yaml:"entries"`
	PayloadOffset     int64       `json:"payload_offset" yaml:"payload_offset"`
	PayloadLength     int64       `json:"payload_length" yaml:"payload_length"`
	KeyFile           string      `json:"key_file,omitempty" yaml:"key_file,omitempty"`
}

// EntryInfo is one header entry
type EntryInfo struct {
	ID     uint8  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Length uint16 `json:"length" yaml:"length"`
	Kind   string `json:"kind" yaml:"kind"`
	Value  string `json:"value" yaml:"value"`
}
