// Package chat holds the append-only conversation log of a session.
package chat

import "pdf-rag/internal/models"

// Log is an ordered list of turns. It is a value: Append returns a new Log
// and never changes the receiver.
type Log struct {
	turns []models.Turn
}

func (l Log) Append(role, text string) Log {
	turns := make([]models.Turn, len(l.turns), len(l.turns)+1)
	copy(turns, l.turns)
	return Log{turns: append(turns, models.Turn{Role: role, Text: text})}
}

// Turns returns a copy of the turns in order
func (l Log) Turns() []models.Turn {
	out := make([]models.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l Log) Len() int {
	return len(l.turns)
}
