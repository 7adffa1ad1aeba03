package model

// EmbeddingCache is one stored vector, keyed by (owner kind, owner id, model).
// Vector holds the encoded float32 array.
type EmbeddingCache struct {
	OwnerKind OwnerKind `json:"owner_type"`
	OwnerID   string    `json:"owner_id"`
	ModelName string    `json:"model"`
	Vector    []byte    `json:"-"`
	Ctime     int64     `json:"ctime"`
}
