package entity

// Player is a connected browser session and the setup it last chose.
type Player struct {
	ID       string   `json:"id"`
	Settings Settings `json:"settings"`
}
