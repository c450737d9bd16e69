package domain

// ItemRating is the popularity record of a single item. Rank 1 is the most viewed item.
type ItemRating struct {
	ItemID int64  `json:"item_id"`
	Views  int64  `json:"views"`
	Rank   int    `json:"rank"`
	Title  string `json:"title"`
}
