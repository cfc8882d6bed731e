package draft

import "encoding/json"

type State string

const (
	StateIdle    State = "idle"    // черновика нет, показываем сохранённое
	StateEditing State = "editing" // есть несохранённые правки
)

// Item — черновик редактирования заготовки детали.
type Item struct {
	PartID  string
	State   State
	Payload json.RawMessage
}

// Decode разбирает payload в v; пустой payload оставляет v как есть.
func (it *Item) Decode(v any) error {
	if it == nil || len(it.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(it.Payload, v)
}
