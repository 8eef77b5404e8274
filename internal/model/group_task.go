package model

import "time"

// Group task statuses. Any status may follow any other.
const (
	GroupTaskPending    = "pendiente"
	GroupTaskInProgress = "en progreso"
	GroupTaskCompleted  = "completada"
)

// englishStatus maps the English labels accepted from clients onto their
// Spanish counterparts for statistics.
var englishStatus = map[string]string{
	"pending":     GroupTaskPending,
	"in progress": GroupTaskInProgress,
	"completed":   GroupTaskCompleted,
}

// GroupTask belongs to exactly one Group.
type GroupTask struct {
	ID          string    `bson:"_id"`
	GroupID     string    `bson:"group_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	DueDate     time.Time `bson:"due_date"`
	AssignedTo  []string  `bson:"assigned_to"`
	Status      string    `bson:"status"`
	UpdatedBy   string    `bson:"updated_by,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// ValidGroupTaskStatus reports whether s is a known status label.
func ValidGroupTaskStatus(s string) bool {
	switch s {
	case GroupTaskPending, GroupTaskInProgress, GroupTaskCompleted:
		return true
	}
	_, ok := englishStatus[s]
	return ok
}

// CanonicalGroupTaskStatus returns the Spanish label for s.
func CanonicalGroupTaskStatus(s string) string {
	if es, ok := englishStatus[s]; ok {
		return es
	}
	return s
}
