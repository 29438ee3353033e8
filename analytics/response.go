package analytics

import "encoding/json"

// PeriodBucket is one time slot of a histogram.
type PeriodBucket struct {
	KeyAsString string `json:"key_as_string"`
	Key         int64  `json:"key"`
	DocCount    int    `json:"doc_count"`
}

type BucketContainer struct {
	Buckets []PeriodBucket `json:"buckets"`
}

// Data is the aggregation for one category key.
type Data struct {
	Meta         map[string]any   `json:"meta,omitempty"`
	DocCount     int              `json:"doc_count"`
	Applications *BucketContainer `json:"applications,omitempty"`
	People       *BucketContainer `json:"people,omitempty"`
}

// Response mirrors the analytics service payload. The proxy forwards the raw body;
// this type documents the shape and is used to decode it where needed.
type Response struct {
	Analytics map[string]Data `json:"analytics"`
}

// Decode parses a raw analytics payload.
func Decode(raw json.RawMessage) (Response, error) {
	var resp Response
	err := json.Unmarshal(raw, &resp)
	return resp, err
}
