package repo

import "context"

type Stats struct {
	Users           int `json:"users"`
	Canvases        int `json:"canvases"`
	PublicCanvases  int `json:"public_canvases"`
	PrivateCanvases int `json:"private_canvases"`
}

type UserCanvasCount struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Canvases int    `json:"canvases"`
}

type StatsRepository interface {
	GetStats(ctx context.Context) (Stats, error)
	UserCanvasCounts(ctx context.Context) ([]UserCanvasCount, error)
}
