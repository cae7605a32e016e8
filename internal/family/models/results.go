package models

// DiscoveryResult is a proposed relationship between the anchor person and
// Person, derived from a two-hop walk. Never stored.
type DiscoveryResult struct {
	Person         *Person
	InferredType   RelationshipType
	Label          string
	ConnectionPath string
	Proximity      int
	Priority       int
}

// MatchCandidate is an existing person that may duplicate a MatchQuery.
type MatchCandidate struct {
	Person           *Person
	NameScore        float64
	Score            float64
	AlreadyConnected bool
	IsSelf           bool
	HighConfidence   bool
}
