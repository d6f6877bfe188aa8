package engine

// Seeds is the provably fair seed pair. Server seeds are used as raw ASCII, never hex-decoded.
type Seeds struct {
	Server string `json:"server_seed"`
	Client string `json:"client_seed"`
}

// Proof records everything needed to replay a fair pick.
type Proof struct {
	ServerSeedHash string  `json:"server_seed_hash"`
	ClientSeed     string  `json:"client_seed"`
	Nonce          uint64  `json:"nonce"`
	Float          float64 `json:"float"`
	Segments       int     `json:"segments"`
	Index          int     `json:"index"`
}
