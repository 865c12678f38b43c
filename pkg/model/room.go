package model

// RoomKind is a named kind of course room. Multiple kinds with the same
// capacity are allowed; Quantity is the number of available rooms of this
// kind.
type RoomKind struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Quantity int    `json:"quantity"`
}
