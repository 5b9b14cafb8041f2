package domain

import "time"

type Room struct {
	ID        string
	Name      string
	MediaURL  string // current media reference; empty until a host sets one
	CreatedAt time.Time
}
