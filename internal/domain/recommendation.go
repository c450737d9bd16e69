package domain

type RecoResult struct {
	UserID   int64   `json:"user_id"`
	Items    []int64 `json:"items"`
	CacheHit bool    `json:"-"`
}

type Explanation struct {
	P           int    `json:"p"`
	Explanation string `json:"explanation"`
}
